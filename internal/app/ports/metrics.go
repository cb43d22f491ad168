package ports

import "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

type SweepMetrics interface {
	RecordVisit(action farm.VisitAction)
	RecordCompanionFault()
	RecordRunFinished(status farm.RunStatus)
}
