package constants

// Database table names
const (
	TABLE_LEADS                 = "leads"
	TABLE_CALL_RECORDS          = "call_records"
	TABLE_RECEPTIONIST_PROFILES = "receptionist_profiles"
)
