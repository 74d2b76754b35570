package notation

import "math"

// FrequencyProvider maps a note to its pitch in Hz
type FrequencyProvider interface {
	FrequencyFor(note Note) (float64, bool)
}

type noteKey struct {
	hole  int
	blow  bool
	slide bool
}

// harmonicaMap is a 12-hole C chromatic harmonica
type harmonicaMap map[noteKey]float64

// HarmonicaMap is the frequency table of a 12-hole C chromatic harmonica
var HarmonicaMap FrequencyProvider = harmonicaMap{
	{1, true, false}: 261.63, {1, false, false}: 293.66, {1, true, true}: 277.18, {1, false, true}: 311.13,
	{2, true, false}: 329.63, {2, false, false}: 349.23, {2, true, true}: 349.23, {2, false, true}: 369.99,
	{3, true, false}: 392.00, {3, false, false}: 440.00, {3, true, true}: 415.30, {3, false, true}: 466.16,
	{4, true, false}: 523.25, {4, false, false}: 493.88, {4, true, true}: 554.37, {4, false, true}: 523.25,
	{5, true, false}: 523.25, {5, false, false}: 587.33, {5, true, true}: 554.37, {5, false, true}: 622.25,
	{6, true, false}: 659.25, {6, false, false}: 698.46, {6, true, true}: 698.46, {6, false, true}: 739.99,
	{7, true, false}: 783.99, {7, false, false}: 880.00, {7, true, true}: 830.61, {7, false, true}: 932.33,
	{8, true, false}: 1046.50, {8, false, false}: 987.77, {8, true, true}: 1108.73, {8, false, true}: 1046.50,
	{9, true, false}: 1046.50, {9, false, false}: 1174.66, {9, true, true}: 1108.73, {9, false, true}: 1244.51,
	{10, true, false}: 1318.51, {10, false, false}: 1396.91, {10, true, true}: 1396.91, {10, false, true}: 1479.98,
	{11, true, false}: 1567.98, {11, false, false}: 1760.00, {11, true, true}: 1661.22, {11, false, true}: 1864.66,
	{12, true, false}: 2093.00, {12, false, false}: 1975.53, {12, true, true}: 2217.46, {12, false, true}: 2093.00,
}

func (m harmonicaMap) FrequencyFor(note Note) (float64, bool) {
	f, ok := m[noteKey{note.Hole, note.Blow, note.Slide}]
	return f, ok
}

// CentsBetween returns how far detected is from target, in cents
func CentsBetween(detected, target float64) float64 {
	return 1200 * math.Log2(detected/target)
}

// MIDIKey converts a frequency to the nearest MIDI key number (A4 = 69)
func MIDIKey(frequency float64) int {
	return int(math.Round(69 + 12*math.Log2(frequency/440.0)))
}
