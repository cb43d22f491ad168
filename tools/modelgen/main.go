package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

var journalTables = map[string]string{
	"sweep_runs":   "SweepRun",
	"sweep_visits": "SweepVisit",
}

func main() {
	var dsn, out string
	flag.StringVar(&dsn, "dsn", os.Getenv("FARMSWEEP_DB_DSN"), "postgres dsn with the sweep journal migrated")
	flag.StringVar(&out, "out", "internal/adapter/repo/gorm/model", "output dir for generated models")
	flag.Parse()

	if dsn == "" {
		log.Fatal("missing --dsn or FARMSWEEP_DB_DSN")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           out,
		ModelPkgPath:      "model",
		Mode:              gen.WithoutContext,
		FieldNullable:     true,
		FieldWithIndexTag: true,
	})
	g.UseDB(db)
	for table, name := range journalTables {
		g.GenerateModelAs(table, name)
	}
	g.Execute()

	fmt.Printf("generated %d journal models at %s\n", len(journalTables), out)
}
