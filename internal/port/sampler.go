package port

// Sampler triggers an immediate measurement of a tracked path
type Sampler interface {
	// SampleNow measures the named path immediately. Unknown names are
	// ignored.
	SampleNow(name string)
}
