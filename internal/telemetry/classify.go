package telemetry

// Status labels attached to every reading.
const (
	StatusNormal      = "NORMAL"
	StatusWarning     = "WARNING"
	StatusCritical    = "CRITICAL"
	StatusMaintenance = "MAINTENANCE"
)

// Classify labels a reading. The check order is fixed: assets under repair
// are always MAINTENANCE, critical limits trump warnings.
func Classify(underRepair bool, tempC, vibMMS float64) string {
	switch {
	case underRepair:
		return StatusMaintenance
	case tempC > TempCritC || vibMMS > VibCritMMS:
		return StatusCritical
	case tempC > TempWarnC || vibMMS > VibWarnMMS:
		return StatusWarning
	default:
		return StatusNormal
	}
}
