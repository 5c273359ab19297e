package ships

// ConfigurationError reports reference data or options that make a run
// impossible. It is fatal at startup and never raised once ships exist.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}
