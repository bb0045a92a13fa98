package motionimg

// CameraState holds every per-pixel and scalar buffer owned exclusively by
// one camera worker. Nothing in here is touched by any goroutine other
// than that camera's own worker.
type CameraState struct {
	W, H int

	Ref    []byte // reference frame
	Virgin []byte // last captured frame before overlays
	Out    []byte // motion image: 0 or original pixel value

	Mask            []byte // optional static mask, nil if unset
	Smartmask       []byte // learned mask value, 0..80
	SmartmaskFinal  []byte // thresholded copy consumed by the differ, 0 or 255
	SmartmaskBuffer []int32

	RefDyn []int32 // per-pixel dynamic-object age counter

	Labels []int32 // connected-component ids, bit 15 marks significance

	Noise          uint8
	Threshold      int
	SmartmaskSpeed int // 0..10
	LastRate       int // frames/s estimate

	EventNr    int
	PrevEvent  int
	Moved      int // camera-motion damping counter
	PostCap    int
	Detecting  bool
}

// SignificantBit marks a label as belonging to a component larger than the
// labeler's significance threshold.
const SignificantBit = 1 << 15

// NewCameraState allocates every buffer for a w x h camera.
func NewCameraState(w, h int) *CameraState {
	n := w * h
	s := &CameraState{
		W: w, H: h,
		Ref:             make([]byte, n),
		Virgin:          make([]byte, n),
		Out:             make([]byte, n),
		Smartmask:       make([]byte, n),
		SmartmaskFinal:  make([]byte, n),
		SmartmaskBuffer: make([]int32, n),
		RefDyn:          make([]int32, n),
		Labels:          make([]int32, n),
		Noise:           8,
	}
	for i := range s.SmartmaskFinal {
		s.SmartmaskFinal[i] = 255
	}
	return s
}

// Reset implements the RESET mode of the reference-frame model: ref becomes
// virgin and every dynamic-object age counter is cleared.
func (s *CameraState) Reset() {
	copy(s.Ref, s.Virgin)
	for i := range s.RefDyn {
		s.RefDyn[i] = 0
	}
}
