package httpadapter

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const corsAllowMethods = "GET,POST,OPTIONS"
const corsAllowHeaders = "Content-Type"

// corsMiddleware lets a browser dashboard poll runs and the farm snapshot.
// An empty or "*" origin allows any origin; otherwise only matching origins
// get CORS headers.
func corsMiddleware(allowOrigin string) app.HandlerFunc {
	allowOrigin = strings.TrimSpace(allowOrigin)
	return func(c context.Context, ctx *app.RequestContext) {
		applyCORSHeaders(ctx, allowOrigin)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

func applyCORSHeaders(ctx *app.RequestContext, allowOrigin string) {
	origin := "*"
	if allowOrigin != "" && allowOrigin != "*" {
		if string(ctx.GetHeader("Origin")) != allowOrigin {
			return
		}
		origin = allowOrigin
		ctx.Response.Header.Set("Vary", "Origin")
	}
	ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
}

// preflight is only reached when the middleware did not abort.
func preflight(_ context.Context, ctx *app.RequestContext) {
	ctx.SetStatusCode(consts.StatusNoContent)
}
