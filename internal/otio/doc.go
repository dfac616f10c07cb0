// Package otio holds the read-only editorial object model consumed by the
// time-remapping engine: clips, media references, time effects, tracks and
// timelines.
//
// The model mirrors the open timeline interchange schema closely enough to
// be compiled from its JSON documents (see internal/compiler), but carries
// only the fields the engine and its collectors read.
//
// Media references and effects are sealed interfaces. Only the variants
// declared in this package implement them:
//
//   - MediaReference: *ImageSequenceReference, *ExternalReference, *MissingReference
//   - Effect: *LinearTimeWarp, *FreezeFrame, *TimeEffect, *GenericEffect
//
// Nothing in this package mutates a clip after construction except Track,
// which records itself as the parent of appended items.
package otio
