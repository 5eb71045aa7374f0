package emotion

import "callmood/internal/model"

// Dashboard is a bundle together with how callers should read it.
type Dashboard struct {
	CallID    string  `json:"call_id,omitempty" yaml:"call_id,omitempty"`
	Revision  int64   `json:"revision" yaml:"revision"`
	Outcome   Outcome `json:"outcome" yaml:"outcome"`
	Message   string  `json:"message,omitempty" yaml:"message,omitempty"`
	Retryable bool    `json:"retryable" yaml:"retryable"`
	Bundle    Bundle  `json:"dashboard" yaml:"dashboard"`
}

// BuildDashboard runs Transform and classifies the result.
func BuildDashboard(resp *model.AnalysisResponse, opts Options) Dashboard {
	bundle := Transform(resp, opts)
	outcome := Classify(resp, bundle)
	d := Dashboard{
		Outcome:   outcome,
		Message:   outcome.Message(),
		Retryable: outcome.Retryable(),
		Bundle:    bundle,
	}
	if resp != nil {
		d.CallID = resp.CallID
	}
	return d
}

// SegmentCount is the number of chartable prosody segments in the bundle.
func (d Dashboard) SegmentCount() int {
	return len(d.Bundle.ChartData)
}
