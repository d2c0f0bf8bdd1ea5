package physics

import "github.com/chewxy/math32"

// MaterialID indexes the material table of a World.
type MaterialID uint16

// Material is the contact response of a surface.
type Material struct {
	Name              string  `json:"name"`
	Friction          float32 `json:"friction"`
	Elasticity        float32 `json:"elasticity"`
	ElasticityFalloff float32 `json:"elasticity_falloff"`
	ScatterAngle      float32 `json:"scatter_angle"` // radians
}

// EffectiveElasticity lowers elasticity as the impact speed grows.
func (m Material) EffectiveElasticity(normalSpeed float32) float32 {
	if m.ElasticityFalloff <= 0 {
		return m.Elasticity
	}
	return m.Elasticity / (1 + m.ElasticityFalloff*math32.Abs(normalSpeed)/ElasticityFalloffSpeed)
}
