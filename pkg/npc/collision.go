package npc

import "github.com/go-gl/mathgl/mgl64"

// TerrainQuery answers ground height for a horizontal position.
type TerrainQuery interface {
	HeightAt(x, z float64) float64
}

// ResolveTerrain snaps pos up to the terrain surface when it is below it and
// zeroes the vertical velocity. Positions at or above the surface are left
// alone. It reports whether a correction happened.
func ResolveTerrain(world TerrainQuery, pos, vel *mgl64.Vec3) bool {
	if world == nil {
		return false
	}
	floor := world.HeightAt(pos.X(), pos.Z())
	if pos.Y() < floor {
		pos[1] = floor
		vel[1] = 0
		return true
	}
	return false
}
