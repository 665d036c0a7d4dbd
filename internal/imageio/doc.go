// Package imageio turns PNG screenshots into normalized float32 tensors.
//
// Decoding yields a RawPixelBuffer of interleaved 8-bit RGBA samples.
// ToTensor scales each channel to [0, 1], drops alpha and reorders the
// samples into the layout the model expects:
//
//	px, err := imageio.DecodeFile("frame.png")
//	if err != nil {
//	    return err
//	}
//	px = imageio.Resize(px, 640, 640)
//	input, err := imageio.ToTensor(px, imageio.LayoutCHW) // [1, 3, 640, 640]
package imageio
