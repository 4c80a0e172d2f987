package tensor

import "testing"

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float64, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != Float64 {
		t.Errorf("DType() = %v, want float64", raw.DType())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}

	// Fresh tensors are zero-initialized.
	for i, v := range raw.AsFloat64() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNewRaw_InvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{0, 3}, Float64, CPU); err == nil {
		t.Error("NewRaw with zero dimension should fail")
	}
}

func TestFromFloat64(t *testing.T) {
	raw, err := FromFloat64([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromFloat64 failed: %v", err)
	}

	data := raw.AsFloat64()
	for i, want := range []float64{1, 2, 3, 4, 5, 6} {
		if data[i] != want {
			t.Errorf("element %d = %v, want %v", i, data[i], want)
		}
	}
}

func TestFromFloat64_LengthMismatch(t *testing.T) {
	if _, err := FromFloat64([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("FromFloat64 with wrong data length should fail")
	}
}

func TestFromInt32(t *testing.T) {
	raw, err := FromInt32([]int32{0, 0, 1, 0, 1, 1}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromInt32 failed: %v", err)
	}
	if raw.AsInt32()[5] != 1 {
		t.Errorf("element 5 = %d, want 1", raw.AsInt32()[5])
	}
}

func TestAsFloat64_WrongDType(t *testing.T) {
	raw, _ := FromInt32([]int32{1, 2}, Shape{2})

	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on int32 tensor should panic")
		}
	}()
	raw.AsFloat64()
}

func TestClone_SharesBuffer(t *testing.T) {
	a, _ := FromFloat64([]float64{1, 2, 3}, Shape{3})
	b := a.Clone()

	// Both views observe a write through either of them.
	a.AsFloat64()[0] = 42
	if b.AsFloat64()[0] != 42 {
		t.Error("Clone should share the underlying buffer")
	}
}

func TestContiguous_AlreadyContiguous(t *testing.T) {
	a, _ := FromFloat64([]float64{1, 2, 3, 4}, Shape{2, 2})
	if a.Contiguous() != a {
		t.Error("Contiguous() of a dense row-major tensor should return the receiver")
	}
}

func TestZerosLike(t *testing.T) {
	a, _ := FromFloat64([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	z := ZerosLike(a)

	if !z.Shape().Equal(a.Shape()) {
		t.Errorf("ZerosLike shape = %v, want %v", z.Shape(), a.Shape())
	}
	for i, v := range z.AsFloat64() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}
