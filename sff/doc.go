// Package sff reads Elecbyte sprite containers ("SFF" files), the indexed
// color sprite archives used by MUGEN style fighting game characters.
//
// Read checks the signature and the version tag and hands the rest of the
// stream to the legacy (sffv1) or the modern (sffv2) reader. The resulting
// File decodes individual sprites, identified by group and image number, into
// any bitmap.Renderer; Image is a shortcut returning an *image.RGBA.
//
// Importing this package also registers the "sff" format with the image
// package. image.Decode then returns the first sprite of a container,
// rendered with palette 0.
package sff
