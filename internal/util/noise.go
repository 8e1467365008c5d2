package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума: сглаживание, частота и число октав
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = int32(3)
)

// Noise генератор шума Перлина с фиксированным сидом.
// Один экземпляр не следует использовать из нескольких горутин.
type Noise struct {
	p *perlin.Perlin
}

// NewNoise создает генератор шума для сида
func NewNoise(seed int64) *Noise {
	return &Noise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// At возвращает значение шума в точке, приведенное к диапазону [0, 1]
func (n *Noise) At(x, y float64) float64 {
	v := (n.p.Noise2D(x, y) + 1.0) / 2.0
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
