// Package collect turns the clips of an edit into publish instances.
//
// A ShotCollector asks the editorial engine which media frames each video
// clip plays, pads them with handles and describes the files an extractor
// must produce: a frame collection for image sequences, or a single file
// flagged for trimming. Audio clips of the timeline are gathered once per
// session by an AudioCache and matched against each shot's timeline range.
package collect
