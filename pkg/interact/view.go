package interact

import "gonum.org/v1/gonum/spatial/r2"

// View maps between world coordinates and widget-local screen coordinates.
// The world origin is drawn at the widget center plus Offset.
type View struct {
	Offset r2.Vec  // pan, in screen units
	Zoom   float64 // screen units per world unit
	Size   r2.Vec  // widget size
}

// Center returns the widget center in local coordinates
func (v View) Center() r2.Vec {
	return r2.Scale(0.5, v.Size)
}

// ToScreen converts a world position to local screen coordinates
func (v View) ToScreen(world r2.Vec) r2.Vec {
	return r2.Add(r2.Add(v.Center(), v.Offset), r2.Scale(v.Zoom, world))
}

// ToWorld converts local screen coordinates to a world position
func (v View) ToWorld(screen r2.Vec) r2.Vec {
	return r2.Scale(1/v.Zoom, r2.Sub(r2.Sub(screen, v.Center()), v.Offset))
}

// zoomAbout rescales to newZoom keeping the world point under cursor fixed
func (v *View) zoomAbout(cursor r2.Vec, newZoom float64) {
	rel := r2.Sub(cursor, v.Center())
	ratio := newZoom / v.Zoom
	v.Offset = r2.Sub(rel, r2.Scale(ratio, r2.Sub(rel, v.Offset)))
	v.Zoom = newZoom
}
