package sarima

import "errors"

var (
	ErrInvalidOrder       = errors.New("model orders must be non-negative")
	ErrSeasonalPeriod     = errors.New("seasonal terms require a seasonal period of at least 2")
	ErrInsufficientData   = errors.New("insufficient data points for the specified order")
	ErrNaNInput           = errors.New("series contains NaN")
	ErrOptimizationFailed = errors.New("optimizer failed to find a finite sum of squares")
	ErrNotFitted          = errors.New("model must be fitted before prediction")
	ErrInvalidSteps       = errors.New("steps must be at least 1")
	ErrInvalidConfidence  = errors.New("confidence must be in (0, 1)")
	ErrInvalidSnapshot    = errors.New("snapshot does not describe a fitted model")
	ErrNonFinite          = errors.New("model produced non-finite predictions")
)
