package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/sticker-kit/internal/config"
	"github.com/menta2k/sticker-kit/pkg/chromakey"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/sticker"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// Handler serves the sticker set API
type Handler struct {
	store    *Store
	encoder  *codec.Codec
	params   types.ChromaKeyParams
	suggest  chromakey.SuggestMethod
	grid     types.Grid
	filename string
	maxBytes int64
}

// NewHandler creates a handler with an empty in-memory store
func NewHandler(cfg *config.Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, _ := cfg.Params()
	suggest, _ := chromakey.ParseSuggestMethod(cfg.ChromaKey.Suggest)
	filter, _ := cfg.Filter()

	c := codec.New()
	newSet := func() *sticker.Set {
		return sticker.NewSet(sticker.Options{
			Decoder:     c,
			Encoder:     c,
			IDs:         sticker.UUIDGenerator{},
			Filter:      &filter,
			MaxStickers: cfg.Output.MaxStickers,
		})
	}

	return &Handler{
		store:    NewStore(newSet),
		encoder:  c,
		params:   params,
		suggest:  suggest,
		grid:     cfg.Grid(),
		filename: cfg.Output.Archive,
		maxBytes: cfg.MaxUploadBytes(),
	}, nil
}

type imageView struct {
	sticker.ProcessedImage
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Keyed  bool   `json:"keyed"`
	URL    string `json:"url"`
}

type setView struct {
	ID       string      `json:"id"`
	Main     *imageView  `json:"main,omitempty"`
	Tab      *imageView  `json:"tab,omitempty"`
	Stickers []imageView `json:"stickers"`
}

func viewOf(setID string, img sticker.ProcessedImage) imageView {
	return imageView{
		ProcessedImage: img,
		Width:          img.Width(),
		Height:         img.Height(),
		Keyed:          img.Keyed(),
		URL:            fmt.Sprintf("/api/sets/%s/images/%s", setID, img.ID),
	}
}

func viewsOf(setID string, imgs []sticker.ProcessedImage) []imageView {
	views := make([]imageView, len(imgs))
	for i, img := range imgs {
		views[i] = viewOf(setID, img)
	}
	return views
}

func setViewOf(id string, set *sticker.Set) setView {
	v := setView{ID: id, Stickers: viewsOf(id, set.Stickers())}
	if img, ok := set.Main(); ok {
		mv := viewOf(id, img)
		v.Main = &mv
	}
	if img, ok := set.Tab(); ok {
		tv := viewOf(id, img)
		v.Tab = &tv
	}
	return v
}

// writeError maps pipeline error kinds onto HTTP statuses
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, types.ErrDecode), errors.Is(err, types.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrLimitExceeded):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// lookup resolves the :set parameter or answers 404
func (h *Handler) lookup(c *gin.Context) (string, *sticker.Set, bool) {
	id := c.Param("set")
	set, ok := h.store.Get(id)
	if !ok {
		writeError(c, fmt.Errorf("%w: set %s", types.ErrNotFound, id))
		return "", nil, false
	}
	return id, set, true
}

// limitBody bounds the request body of uploads
func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
}

// readUpload returns a single upload, either a multipart form file named
// field or the raw request body
func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, error) {
	h.limitBody(c)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile(field)
		if err != nil {
			return nil, uploadError(field, err)
		}
		return readFormFile(fh)
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty request body", types.ErrDecode)
	}
	return data, nil
}

func uploadError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: form file %q: %v", types.ErrDecode, field, err)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrDecode, fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) listSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sets": h.store.IDs()})
}

func (h *Handler) createSet(c *gin.Context) {
	id, set := h.store.Create()
	c.JSON(http.StatusCreated, setViewOf(id, set))
}

func (h *Handler) getSet(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, setViewOf(id, set))
}

func (h *Handler) deleteSet(c *gin.Context) {
	if !h.store.Delete(c.Param("set")) {
		writeError(c, fmt.Errorf("%w: set %s", types.ErrNotFound, c.Param("set")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) putMain(c *gin.Context) {
	h.putThumbnail(c, (*sticker.Set).SetMain)
}

func (h *Handler) putTab(c *gin.Context) {
	h.putThumbnail(c, (*sticker.Set).SetTab)
}

func (h *Handler) putThumbnail(c *gin.Context, put func(*sticker.Set, []byte) (sticker.ProcessedImage, error)) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	data, err := h.readUpload(c, "file")
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := put(set, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(id, img))
}

func (h *Handler) deleteMain(c *gin.Context) {
	h.deleteThumbnail(c, (*sticker.Set).RemoveMain, "main")
}

func (h *Handler) deleteTab(c *gin.Context) {
	h.deleteThumbnail(c, (*sticker.Set).RemoveTab, "tab")
}

func (h *Handler) deleteThumbnail(c *gin.Context, remove func(*sticker.Set) bool, slot string) {
	_, set, ok := h.lookup(c)
	if !ok {
		return
	}
	if !remove(set) {
		writeError(c, fmt.Errorf("%w: no %s image", types.ErrNotFound, slot))
		return
	}
	c.Status(http.StatusNoContent)
}

// gridQuery reads ?cols=&rows=, falling back to the configured grid
func (h *Handler) gridQuery(c *gin.Context) (types.Grid, error) {
	grid := h.grid
	for name, dst := range map[string]*int{"cols": &grid.Cols, "rows": &grid.Rows} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return grid, fmt.Errorf("%w: %s must be an integer", types.ErrInvalidConfig, name)
			}
			*dst = n
		}
	}
	return grid, grid.Validate()
}

func (h *Handler) addSheet(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	grid, err := h.gridQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	data, err := h.readUpload(c, "file")
	if err != nil {
		writeError(c, err)
		return
	}
	added, err := set.AddSheet(data, grid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": viewsOf(id, added)})
}

func (h *Handler) addStickers(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	h.limitBody(c)
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, uploadError("files", err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		writeError(c, fmt.Errorf("%w: no files uploaded", types.ErrDecode))
		return
	}

	payloads := make([][]byte, len(files))
	for i, fh := range files {
		if payloads[i], err = readFormFile(fh); err != nil {
			writeError(c, err)
			return
		}
	}
	added, err := set.AddStickers(c.Request.Context(), payloads...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": viewsOf(id, added)})
}

func (h *Handler) clearStickers(c *gin.Context) {
	_, set, ok := h.lookup(c)
	if !ok {
		return
	}
	set.Clear()
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeSticker(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := set.RemoveSticker(c.Param("image")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stickers": viewsOf(id, set.Stickers())})
}

func (h *Handler) moveSticker(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	var req struct {
		To *int `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err))
		return
	}
	if err := set.MoveStickerByID(c.Param("image"), *req.To); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stickers": viewsOf(id, set.Stickers())})
}

func (h *Handler) reorder(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err))
		return
	}
	if err := set.Reorder(req.IDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stickers": viewsOf(id, set.Stickers())})
}

func (h *Handler) imagePNG(c *gin.Context) {
	_, set, ok := h.lookup(c)
	if !ok {
		return
	}
	img, err := set.Get(c.Param("image"))
	if err != nil {
		writeError(c, err)
		return
	}
	buf := img.Image
	if original, _ := strconv.ParseBool(c.Query("original")); original {
		buf = img.Original
	}
	data, err := h.encoder.Encode(buf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// keyColor picks the color at ?x=&y= of the original image, or estimates the
// background with ?method=border|dominant
func (h *Handler) keyColor(c *gin.Context) {
	_, set, ok := h.lookup(c)
	if !ok {
		return
	}
	img, err := set.Get(c.Param("image"))
	if err != nil {
		writeError(c, err)
		return
	}

	var rgb types.RGB
	if xs, ys := c.Query("x"), c.Query("y"); xs != "" || ys != "" {
		x, xerr := strconv.Atoi(xs)
		y, yerr := strconv.Atoi(ys)
		if xerr != nil || yerr != nil {
			writeError(c, fmt.Errorf("%w: x and y must be integers", types.ErrInvalidConfig))
			return
		}
		rgb, err = chromakey.PickColor(img.Original, x, y)
	} else {
		method := h.suggest
		if name := c.Query("method"); name != "" {
			if method, err = chromakey.ParseSuggestMethod(name); err != nil {
				writeError(c, err)
				return
			}
		}
		rgb, err = set.SuggestKeyColor(img.ID, method)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"color": rgb.Hex(), "rgb": rgb})
}

type chromaKeyRequest struct {
	Color     *string  `json:"color"`
	Auto      string   `json:"auto"`
	Tolerance *float64 `json:"tolerance"`
	Feather   *float64 `json:"feather"`
	Despill   *bool    `json:"despill"`
}

// params applies the request on top of the configured defaults
func (r chromaKeyRequest) params(defaults types.ChromaKeyParams) (types.ChromaKeyParams, error) {
	p := defaults
	if r.Color != nil {
		rgb, err := chromakey.ParseHex(*r.Color)
		if err != nil {
			return p, err
		}
		p.Target = rgb
	}
	if r.Tolerance != nil {
		p.Tolerance = *r.Tolerance
	}
	if r.Feather != nil {
		p.Feather = *r.Feather
	}
	if r.Despill != nil {
		p.Despill = *r.Despill
	}
	return p, p.Validate()
}

func (h *Handler) applyChromaKey(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	var req chromaKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err))
		return
	}
	params, err := req.params(h.params)
	if err != nil {
		writeError(c, err)
		return
	}

	imageID := c.Param("image")
	if req.Auto != "" {
		method, err := chromakey.ParseSuggestMethod(req.Auto)
		if err != nil {
			writeError(c, err)
			return
		}
		if params.Target, err = set.SuggestKeyColor(imageID, method); err != nil {
			writeError(c, err)
			return
		}
	}

	img, err := set.ApplyChromaKey(imageID, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": viewOf(id, img), "params": params})
}

func (h *Handler) resetChromaKey(c *gin.Context) {
	id, set, ok := h.lookup(c)
	if !ok {
		return
	}
	img, err := set.ResetChromaKey(c.Param("image"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(id, img))
}

func (h *Handler) archive(c *gin.Context) {
	_, set, ok := h.lookup(c)
	if !ok {
		return
	}
	if set.Empty() {
		writeError(c, fmt.Errorf("%w: set is empty", types.ErrInvalidConfig))
		return
	}
	var buf bytes.Buffer
	if err := set.Export(&buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.filename))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
