package world

import "math"

// Small float32 wrappers around the stdlib's float64 math functions. The
// simulation is specified in float32 world units throughout; these
// keep call sites free of repeated float64(...) float32(...) conversions.

func sqrt32(v float32) float32       { return float32(math.Sqrt(float64(v))) }
func sin32(v float32) float32        { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32        { return float32(math.Cos(float64(v))) }
func atan2_32(y, x float32) float32  { return float32(math.Atan2(float64(y), float64(x))) }
func log32(v float32) float32        { return float32(math.Log(float64(v))) }
func pow32(b, e float32) float32     { return float32(math.Pow(float64(b), float64(e))) }
