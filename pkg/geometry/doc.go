// Package geometry provides the spatial primitives of the layout engine:
// axis-aligned bounding boxes, the fixed-size canvas, and its 3×3 named
// region decomposition.
//
// All types are pure values. The coordinate origin sits at the canvas
// center with x growing right and y growing up, so the valid range is
// [-width/2, width/2] × [-height/2, height/2].
package geometry
