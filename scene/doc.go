// Package scene builds the foreign scene graph of a floor plan.
//
// A Builder resolves the scene, ground plane, wall, vector and color
// classes through a foreign.Factory, looks their members up once, and then
// runs a fixed sequence:
//
//  1. precache the rendering-state and image-loader types
//  2. create the scene root
//  3. install it as the current scene unless one is installed
//  4. assign the annotation scale
//  5. create the ground plane from the wall extent
//  6. create, complete and draw every exported wall
//  7. attach the ground plane and the walls to the scene
//  8. assign the camera pose
//
// Failures in steps 1 and 3 are logged; any other failure aborts the build
// with an error of the build phase.
//
// The adapters in this package are the only code that knows member names
// of the foreign model.
package scene
