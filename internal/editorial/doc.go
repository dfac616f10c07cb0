// Package editorial converts between a shot's timeline range and the frames
// of its source media.
//
// The package is pure: it reads otio values, never mutates them, performs
// no I/O and keeps no state between calls. Every function is safe for
// concurrent use.
//
// Entry points, leaves first:
//
//   - OTIORangeToFrameRange, OTIORangeWithHandles, RangeFromFrames,
//     FramesToSeconds, FramesToTimecode: discrete frame helpers
//   - IsOverlappingOTIORanges: covering / inside / overlap classification
//   - ConvertToPaddedPath, MakeSequenceCollection: sequence path helpers
//   - RemapRangeOnFileSequence: timeline range to on-disk frame numbers
//   - GetMediaRangeWithRetimes: media in/out, handles and retime data
//
// # Rates
//
// Rates are compared after rounding both to two decimals, so NTSC rates
// written with different precision (23.976 and 23.976024627685547) are
// treated as equal while 23.0 and 24.0 are not.
//
// # Media addressing
//
// Image sequences are addressed by their on-disk frame numbers. Single
// files are addressed by a zero-based offset from the start of the media,
// since extraction tools ignore embedded timecode. The resolver picks the
// addressing once per clip; the retime math is shared.
package editorial
