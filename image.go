package pdf

import (
	"bytes"
	"fmt"
	stdimage "image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/ccitt"
)

// ImageFormat identifies how an Image XObject's sample data is encoded.
type ImageFormat int

const (
	ImageUnknown ImageFormat = iota
	ImageRaw                 // uncompressed, or decompressed by a generic filter (Flate/LZW/RunLength)
	ImageJPEG                // DCTDecode
	ImageJPEG2000            // JPXDecode
	ImageCCITT              // CCITTFaxDecode
)

// ImageColorSpace classifies an Image's decoded channel layout.
type ImageColorSpace int

const (
	ColorSpaceUnknown ImageColorSpace = iota
	ColorSpaceGray
	ColorSpaceRGB
	ColorSpaceRGBA
	ColorSpaceCMYK
)

// Image is a decoded (or, where decoding isn't supported, metadata-only)
// Image XObject, handed to a Device's DrawImage.
type Image struct {
	Width             int
	Height            int
	BitsPerComponent  int
	ColorSpace        ImageColorSpace
	Format            ImageFormat
	HasAlpha          bool
	Data              []byte // decoded pixel data, one row after another; nil if Format couldn't be decoded
	Decoded           stdimage.Image
}

func imageFormatFromFilterName(name string) ImageFormat {
	switch name {
	case "DCTDecode":
		return ImageJPEG
	case "JPXDecode":
		return ImageJPEG2000
	case "CCITTFaxDecode":
		return ImageCCITT
	default:
		return ImageRaw
	}
}

func imageColorSpaceFromValue(cs Value) (ImageColorSpace, int) {
	switch cs.Kind() {
	case Name:
		switch cs.Name() {
		case "DeviceGray", "CalGray", "G":
			return ColorSpaceGray, 1
		case "DeviceRGB", "CalRGB", "RGB":
			return ColorSpaceRGB, 3
		case "DeviceCMYK", "CMYK":
			return ColorSpaceCMYK, 4
		}
	case Array:
		if cs.Len() > 0 {
			switch cs.Index(0).Name() {
			case "ICCBased":
				stream := cs.Index(1)
				n := int(stream.Key("N").Int64())
				switch n {
				case 1:
					return ColorSpaceGray, 1
				case 4:
					return ColorSpaceCMYK, 4
				default:
					return ColorSpaceRGB, 3
				}
			case "CalGray", "Separation":
				return ColorSpaceGray, 1
			case "CalRGB", "Lab":
				return ColorSpaceRGB, 3
			case "Indexed":
				return ColorSpaceRGB, 3
			}
		}
	}
	return ColorSpaceUnknown, 3
}

// decodeImageXObject extracts metadata from an Image XObject and, for
// formats Go knows how to decode (JPEG via the standard library, CCITT
// Group 3/4 fax via golang.org/x/image/ccitt, and raw samples interpreted
// against /Width, /Height, /BitsPerComponent and /ColorSpace), produces
// pixel data. JPEG2000 is left undecoded - a caller that needs it can
// still read Format and the raw bytes via xobj.Reader().
func decodeImageXObject(xobj Value) (*Image, error) {
	width := int(xobj.Key("Width").Int64())
	height := int(xobj.Key("Height").Int64())
	bpc := int(xobj.Key("BitsPerComponent").Int64())
	if bpc == 0 {
		bpc = 8
	}
	colorSpace, channels := imageColorSpaceFromValue(xobj.Key("ColorSpace"))
	format := ImageRaw
	switch filter := xobj.Key("Filter"); filter.Kind() {
	case Name:
		format = imageFormatFromFilterName(filter.Name())
	case Array:
		if n := filter.Len(); n > 0 {
			format = imageFormatFromFilterName(filter.Index(n - 1).Name())
		}
	}

	img := &Image{
		Width:            width,
		Height:           height,
		BitsPerComponent: bpc,
		ColorSpace:       colorSpace,
		Format:           format,
		HasAlpha:         colorSpace == ColorSpaceRGBA,
	}

	rc := xobj.Reader()
	if rc == nil {
		return img, nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return img, nil
	}

	switch format {
	case ImageJPEG:
		decoded, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return img, nil
		}
		img.Decoded = decoded
		img.Width, img.Height = decoded.Bounds().Dx(), decoded.Bounds().Dy()
	case ImageCCITT:
		decoded, err := decodeCCITTFax(xobj, data, width, height)
		if err != nil {
			// Leave the raw encoded bytes for a caller that understands
			// the encoding directly, same as the JPEG2000 fallback.
			img.Data = data
			break
		}
		img.Data = decoded
		img.BitsPerComponent = 1
		img.ColorSpace = ColorSpaceGray
	case ImageRaw:
		if bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
			decoded, err := png.Decode(bytes.NewReader(data))
			if err == nil {
				img.Decoded = decoded
				img.Width, img.Height = decoded.Bounds().Dx(), decoded.Bounds().Dy()
				break
			}
		}
		expected := rawImageSize(width, height, channels, bpc)
		if expected > 0 && len(data) >= expected {
			img.Data = data[:expected]
		} else {
			img.Data = data
		}
	default:
		// JPEG2000/CCITT: hand back the raw encoded bytes undecoded.
		img.Data = data
	}
	return img, nil
}

// decodeCCITTFax decodes CCITTFaxDecode sample data into a packed 1-bit-
// per-pixel bitmap (MSB first, one byte row alignment per scanline), the
// form golang.org/x/image/ccitt produces. /DecodeParms governs K (negative
// selects Group 4, non-negative Group 3), /Columns, /Rows, /BlackIs1, and
// /EncodedByteAlign.
func decodeCCITTFax(xobj Value, data []byte, width, height int) ([]byte, error) {
	parms := decodeParmsForFilter(xobj, "CCITTFaxDecode")

	columns := int(parms.Key("Columns").Int64())
	if columns == 0 {
		columns = width
	}
	if columns == 0 {
		columns = 1728 // PDF default for CCITTFaxDecode's /Columns
	}
	rows := int(parms.Key("Rows").Int64())
	if rows == 0 {
		rows = height
	}

	mode := ccitt.Group3
	if parms.Key("K").Int64() < 0 {
		mode = ccitt.Group4
	}
	opts := &ccitt.Options{
		Invert: !parms.Key("BlackIs1").Bool(),
		Align:  parms.Key("EncodedByteAlign").Bool(),
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, mode, columns, rows, opts)
	return io.ReadAll(r)
}

// decodeParmsForFilter returns the /DecodeParms entry that pairs with
// filterName in xobj's (possibly array-valued) /Filter, mirroring the
// filter/param pairing Value.Reader applies when running the filter chain.
func decodeParmsForFilter(xobj Value, filterName string) Value {
	filter := xobj.Key("Filter")
	parms := xobj.Key("DecodeParms")
	if filter.Kind() != Array {
		return parms
	}
	for i := 0; i < filter.Len(); i++ {
		if filter.Index(i).Name() == filterName {
			return parms.Index(i)
		}
	}
	return Value{}
}

func rawImageSize(width, height, channels, bpc int) int {
	if width <= 0 || height <= 0 || channels <= 0 || bpc <= 0 {
		return 0
	}
	bitsPerRow := width * channels * bpc
	bytesPerRow := (bitsPerRow + 7) / 8
	return bytesPerRow * height
}

func (f ImageFormat) String() string {
	switch f {
	case ImageRaw:
		return "Raw"
	case ImageJPEG:
		return "JPEG"
	case ImageJPEG2000:
		return "JPEG2000"
	case ImageCCITT:
		return "CCITT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}
