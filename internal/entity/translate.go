package entity

import "math"

// Value translation between host-level units and the Sengled wire format.
//
// The wire carries brightness and colour temperature as 0-100 percentages;
// the host side uses 0-255 brightness and Kelvin.
const (
	maxBrightness = 255

	minKelvin = 2000
	maxKelvin = 6500
)

// brightnessToPercent converts host brightness (0-255) to wire percent (0-100).
func brightnessToPercent(brightness int) int {
	return int(math.Round(float64(brightness) * 100 / maxBrightness))
}

// percentToBrightness converts wire percent (0-100) to host brightness (0-255).
func percentToBrightness(percent int) int {
	return int(math.Round(float64(percent) * maxBrightness / 100))
}

// kelvinToPercent converts a colour temperature in Kelvin to wire percent,
// where 0 is the warmest supported temperature and 100 the coolest.
func kelvinToPercent(kelvin int) int {
	return int(math.Round(float64(kelvin-minKelvin) * 100 / float64(maxKelvin-minKelvin)))
}

// percentToKelvin converts wire percent back to Kelvin.
func percentToKelvin(percent int) int {
	return minKelvin + int(math.Round(float64(percent)*float64(maxKelvin-minKelvin)/100))
}
