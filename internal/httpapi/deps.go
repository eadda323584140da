package httpapi

import (
	"evolve-engine/internal/consult"
	"evolve-engine/internal/estimate"

	"go.uber.org/zap"
)

type Deps struct {
	Intake  consult.Intake
	Pricing estimate.Pricing
	Log     *zap.Logger
}
