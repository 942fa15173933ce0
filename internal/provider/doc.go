// Package provider defines the contract between the scheduling core and
// concrete calendar backends. A backend implements Adapter for each connected
// account; the engine fans fetches out across adapters concurrently and
// normalizes the returned raw records before any interval arithmetic.
//
// Adapters own all transport, authentication, and vendor wire formats. The
// core only ever sees RawEvent values.
package provider
