// Package retry provides exponential backoff retry logic for transient
// failures.
//
// # Usage
//
//	cfg := retry.Config{
//	    MaxAttempts:  3,
//	    InitialDelay: 50 * time.Millisecond,
//	    MaxDelay:     500 * time.Millisecond,
//	    Multiplier:   2.0,
//	    AddJitter:    true,
//	}
//	resp, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
//	    return transport.Send(ctx, node, envelope)
//	})
//
// An error wrapped with NonRetryable fails the call immediately instead
// of consuming further attempts — used when the failure is already
// known to be permanent, such as a remote handler's own application
// error surfacing through an otherwise-successful round trip.
//
// # Context cancellation
//
// Do and DoWithResult stop retrying as soon as ctx is done, whether
// that happens during the operation itself or during a backoff delay.
package retry
