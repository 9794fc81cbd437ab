// Package plan reads source plans and converts their walls into the
// geometry the scene builder consumes.
//
// A plan lists walls by centerline, thickness and height, optionally
// assigned to named levels. Plans are stored as JSON, YAML or TOML:
//
//	p, err := plan.Load("house.yaml")
//	walls := plan.ExportedWalls(p, plan.DefaultClassifier())
//	geom := plan.DefaultConverter().Convert(walls[0])
//
// When a plan declares levels they are classified by keyword, and walls on
// roof, vegetation and ignored levels are not exported. A plan without
// declared levels exports all of its walls.
package plan
