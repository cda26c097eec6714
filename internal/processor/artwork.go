package processor

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG format support
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultBlurRadius = 15.0
	jpegQuality       = 90
)

// ArtworkProcessor renders square cover thumbnails and blurred backdrops into a cache dir
type ArtworkProcessor struct {
	logger     *zap.Logger
	dir        string
	size       int
	blurRadius float64
}

// NewArtworkProcessor creates a processor writing into cfg.ArtworkDir
func NewArtworkProcessor(logger *zap.Logger, cfg *config.AppConfig) *ArtworkProcessor {
	size := cfg.ArtworkSize
	if size <= 0 {
		size = 512
	}
	return &ArtworkProcessor{
		logger:     logger.Named("artwork"),
		dir:        cfg.ArtworkDir,
		size:       size,
		blurRadius: defaultBlurRadius,
	}
}

// Cover decodes imageData and fills a size x size square, cropping from the center
func (p *ArtworkProcessor) Cover(imageData []byte) ([]byte, error) {
	img, err := decode(imageData)
	if err != nil {
		return nil, err
	}
	cover := imaging.Fill(img, p.size, p.size, imaging.Center, imaging.Lanczos)
	return encode(cover)
}

// Backdrop creates a blurred wide background with the sharp cover pasted in the center
func (p *ArtworkProcessor) Backdrop(imageData []byte) ([]byte, error) {
	img, err := decode(imageData)
	if err != nil {
		return nil, err
	}

	height := p.size
	width := height * 16 / 9
	background := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, p.blurRadius)

	coverSize := height * 2 / 3
	cover := imaging.Fill(img, coverSize, coverSize, imaging.Center, imaging.Lanczos)
	result := imaging.Paste(background, cover, image.Pt((width-coverSize)/2, (height-coverSize)/2))

	return encode(result)
}

// Generate writes the cover and backdrop for ref into the cache dir
func (p *ArtworkProcessor) Generate(data []byte, ref string) (domain.Artwork, error) {
	cover, err := p.Cover(data)
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("failed to process cover: %w", err)
	}
	backdrop, err := p.Backdrop(data)
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("failed to process backdrop: %w", err)
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return domain.Artwork{}, fmt.Errorf("failed to create artwork directory: %w", err)
	}

	art := p.paths(ref)
	if err := os.WriteFile(art.CoverPath, cover, 0644); err != nil {
		return domain.Artwork{}, fmt.Errorf("failed to write cover: %w", err)
	}
	if err := os.WriteFile(art.BackdropPath, backdrop, 0644); err != nil {
		return domain.Artwork{}, fmt.Errorf("failed to write backdrop: %w", err)
	}

	p.logger.Info("Artwork generated",
		zap.String("ref", ref),
		zap.String("cover", art.CoverPath),
		zap.Int("size", len(cover)))
	return art, nil
}

// Cached returns the files of a previous Generate for ref, if both still exist
func (p *ArtworkProcessor) Cached(ref string) (domain.Artwork, bool) {
	art := p.paths(ref)
	for _, path := range []string{art.CoverPath, art.BackdropPath} {
		if _, err := os.Stat(path); err != nil {
			return domain.Artwork{}, false
		}
	}
	return art, true
}

func (p *ArtworkProcessor) paths(ref string) domain.Artwork {
	sum := sha1.Sum([]byte(ref))
	key := hex.EncodeToString(sum[:])

	dir := p.dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return domain.Artwork{
		Ref:          ref,
		CoverPath:    filepath.Join(dir, key+".jpg"),
		BackdropPath: filepath.Join(dir, key+"-backdrop.jpg"),
	}
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

func encode(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return buf.Bytes(), nil
}

var _ domain.Processor = (*ArtworkProcessor)(nil)
