// Package web serves the sprites of a loaded container over HTTP.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/image/draw"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-mugen/sff"
)

// maxScale bounds the scale query parameter.
const maxScale = 8

type Handler struct {
	f       *sff.File
	digest  uint64
	modTime time.Time
}

// NewHandler constructs a web handler for the passed container. container
// holds the raw bytes f was read from; they only feed the ETag. modTime is
// reported as Last-Modified unless zero.
func NewHandler(f *sff.File, container []byte, modTime time.Time) *Handler {
	return &Handler{
		f:       f,
		digest:  xxhash.Sum64(container),
		modTime: modTime,
	}
}

type spriteParams struct {
	group, image uint16
	palette      int
	scale        int
}

func parseSpriteParams(r *http.Request) (spriteParams, error) {
	vars := mux.Vars(r)
	p := spriteParams{scale: 1}
	group, err := strconv.ParseUint(vars["group"], 10, 16)
	if err != nil {
		return p, fmt.Errorf("group not a number")
	}
	img, err := strconv.ParseUint(vars["image"], 10, 16)
	if err != nil {
		return p, fmt.Errorf("image not a number")
	}
	p.group, p.image = uint16(group), uint16(img)
	if pal := r.URL.Query().Get("palette"); pal != "" {
		if p.palette, err = strconv.Atoi(pal); err != nil {
			return p, fmt.Errorf("palette not a number")
		}
	}
	if scale := r.URL.Query().Get("scale"); scale != "" {
		p.scale, _ = strconv.Atoi(scale)
		// ignore invalid scale
		if p.scale < 1 {
			p.scale = 1
		}
		if p.scale > maxScale {
			p.scale = maxScale
		}
	}
	return p, nil
}

func (h *Handler) etag(kind string, p spriteParams, mime string) string {
	generation := 1 // bump if the way we generate it changes
	return fmt.Sprintf(`W/"%s:%d:%016x:%d:%d:%d:%d:%s"`, kind, generation, h.digest, p.group, p.image, p.palette, p.scale, mime)
}

// notModified answers a conditional request whose ETag still matches.
func (h *Handler) notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

func (h *Handler) writeHeaders(w http.ResponseWriter, mime, etag string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	if !h.modTime.IsZero() {
		w.Header().Set("Last-Modified", h.modTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
}

// sprite renders a sprite and scales it up with nearest neighbor sampling,
// which keeps pixel art crisp.
func (h *Handler) sprite(p spriteParams) (image.Image, error) {
	img, err := h.f.Image(p.group, p.image, p.palette)
	if err != nil {
		return nil, err
	}
	if p.scale == 1 {
		return img, nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*p.scale, b.Dy()*p.scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

func (h *Handler) serveSprite(w http.ResponseWriter, r *http.Request, kind, mime string, encode func(*bytes.Buffer, image.Image) error) {
	tr := trace.New("sffweb."+kind, r.URL.Path)
	defer tr.Finish()

	p, err := parseSpriteParams(r)
	if err != nil {
		tr.LazyPrintf("bad request: %v", err)
		tr.SetError()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	etag := h.etag(kind, p, mime)
	if h.notModified(w, r, etag) {
		tr.LazyPrintf("not modified")
		return
	}

	img, err := h.sprite(p)
	if err != nil {
		tr.LazyPrintf("render: %v", err)
		tr.SetError()
		glog.Errorf("error rendering sprite %d,%d: %v", p.group, p.image, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	buf := &bytes.Buffer{}
	if err := encode(buf, img); err != nil {
		tr.LazyPrintf("encode: %v", err)
		tr.SetError()
		glog.Errorf("error encoding sprite %d,%d as %s: %v", p.group, p.image, mime, err)
		http.Error(w, "image could not be encoded", http.StatusInternalServerError)
		return
	}
	tr.LazyPrintf("%dx%d, %d bytes", img.Bounds().Dx(), img.Bounds().Dy(), buf.Len())
	h.writeHeaders(w, mime, etag)
	buf.WriteTo(w)
}

func (h *Handler) spritePNGHandler(w http.ResponseWriter, r *http.Request) {
	h.serveSprite(w, r, "png", "image/png", func(b *bytes.Buffer, img image.Image) error {
		return png.Encode(b, img)
	})
}

func (h *Handler) spriteGIFHandler(w http.ResponseWriter, r *http.Request) {
	h.serveSprite(w, r, "gif", "image/gif", encodeGIF)
}

// encodeGIF quantizes img to at most 255 colors and reserves index 0 for
// transparency, so the zero value of the paletted image is transparent.
func encodeGIF(b *bytes.Buffer, img image.Image) error {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 255), img)
	palTransparent := image.NewPaletted(img.Bounds(), append(color.Palette{color.Transparent}, pal...))
	draw.Draw(palTransparent, img.Bounds(), img, img.Bounds().Min, draw.Over)
	return gif.Encode(b, palTransparent, nil)
}

// SpriteListing describes one sprite in /sprites.json.
type SpriteListing struct {
	Group  uint16   `json:"group"`
	Image  uint16   `json:"image"`
	Index  int      `json:"index"`
	Axis   [2]int16 `json:"axis"`
	Width  int      `json:"width,omitempty"`
	Height int      `json:"height,omitempty"`
	// PNG is a data URL of the sprite rendered with the requested palette.
	PNG   string `json:"png,omitempty"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) listingHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("sffweb.listing", r.URL.Path)
	defer tr.Finish()

	palette := 0
	if pal := r.URL.Query().Get("palette"); pal != "" {
		palette, _ = strconv.Atoi(pal)
		// ignore invalid palette
	}
	etag := h.etag("listing", spriteParams{palette: palette}, "application/json")
	if h.notModified(w, r, etag) {
		return
	}

	var listing []SpriteListing
	for _, s := range h.f.Sprites() {
		l := SpriteListing{Group: s.Group, Image: s.Image, Index: s.Index, Axis: s.Axis}
		img, err := h.f.Image(s.Group, s.Image, palette)
		if err != nil {
			// a broken sprite is listed without an image
			l.Error = err.Error()
			listing = append(listing, l)
			continue
		}
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, img); err != nil {
			l.Error = err.Error()
			listing = append(listing, l)
			continue
		}
		l.Width, l.Height = img.Bounds().Dx(), img.Bounds().Dy()
		l.PNG = dataurl.New(buf.Bytes(), "image/png").String()
		listing = append(listing, l)
	}
	tr.LazyPrintf("%d sprites", len(listing))

	body, err := json.Marshal(listing)
	if err != nil {
		tr.SetError()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeHeaders(w, "application/json", etag)
	w.Write(body)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sprite/{group:[0-9]+}/{image:[0-9]+}.png", h.spritePNGHandler)
	r.HandleFunc("/sprite/{group:[0-9]+}/{image:[0-9]+}.gif", h.spriteGIFHandler)
	r.HandleFunc("/sprites.json", h.listingHandler)
}
