package tensor

// Backend defines the compute interface the gradient tape relies on.
// The tape only ever needs to combine gradients flowing into the same
// tensor and to seed missing gradients, so the surface is deliberately
// small compared to a full ML framework backend.
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// Device returns the compute device.
	Device() Device

	// Add performs element-wise addition of two same-shape tensors.
	Add(a, b *RawTensor) *RawTensor
}
