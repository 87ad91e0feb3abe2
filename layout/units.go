package layout

// This file defines unit conversion helpers. Layout results are kept in
// pt throughout; the canvas backend converts to mm at the drawing boundary.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// MmFromPt converts a length in pt to mm.
func MmFromPt(v float64) float64 { return v * PtToMm }

// PtFromMm converts a length in mm to pt.
func PtFromMm(v float64) float64 { return v * MmToPt }
