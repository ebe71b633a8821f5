package models

// Health is the body of the liveness and readiness checks.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SnapshotStatus describes the roster snapshot the API is serving.
type SnapshotStatus struct {
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LoadedAt      *Timestamp   `json:"loadedAt,omitempty"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	LastError     string       `json:"lastError,omitempty"`
}
