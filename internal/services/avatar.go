package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/eaas-dev/eaas-backend/internal/logger"
)

const avatarSize = 512

// avatarPalette is the fixed background set; a user's color is picked by
// hashing their id so it stays stable across regenerations.
var avatarPalette = []color.NRGBA{
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF},
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF},
	{R: 0x0E, G: 0x74, B: 0x90, A: 0xFF},
	{R: 0xBE, G: 0x18, B: 0x5D, A: 0xFF},
	{R: 0x47, G: 0x46, B: 0xE5, A: 0xFF},
}

// AvatarService renders initials avatars and stores them in the bucket.
type AvatarService interface {
	CreateAndUpload(ctx context.Context, userID, name string) (string, error)
	CreateAndUploadFromImage(ctx context.Context, userID string, raw []byte) (string, error)
	Generate(userID, name string) (bytes.Buffer, error)
}

type avatarService struct {
	log      *logger.Logger
	bucket   BucketService
	fontFace font.Face
	now      func() time.Time
}

// NewAvatarService loads the TTF named by AVATAR_FONT. Without a font the
// service still works, rendering plain colored discs.
func NewAvatarService(log *logger.Logger, bucket BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	var face font.Face
	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		serviceLog.Warn("AVATAR_FONT not set, avatars will render without initials")
	} else {
		loaded, err := loadFontFace(fontPath, 206)
		if err != nil {
			return nil, fmt.Errorf("could not load avatar font: %w", err)
		}
		face = loaded
	}

	return &avatarService{
		log:      serviceLog,
		bucket:   bucket,
		fontFace: face,
		now:      time.Now,
	}, nil
}

func (as *avatarService) CreateAndUpload(ctx context.Context, userID, name string) (string, error) {
	buf, err := as.Generate(userID, name)
	if err != nil {
		return "", err
	}
	return as.upload(ctx, userID, buf.Bytes())
}

func (as *avatarService) CreateAndUploadFromImage(ctx context.Context, userID string, raw []byte) (string, error) {
	processed, err := processUploadedAvatar(raw, avatarSize)
	if err != nil {
		return "", err
	}
	return as.upload(ctx, userID, processed.Bytes())
}

// Versioned keys keep CDNs and browsers from serving a stale cached avatar.
func (as *avatarService) upload(ctx context.Context, userID string, png []byte) (string, error) {
	key := fmt.Sprintf("avatars/%s/%d.png", userID, as.now().UnixNano())
	if err := as.bucket.Upload(ctx, key, bytes.NewReader(png)); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return as.bucket.PublicURL(key), nil
}

func (as *avatarService) Generate(userID, name string) (bytes.Buffer, error) {
	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(pickAvatarColor(userID))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	if as.fontFace != nil {
		initials := computeInitials(name)
		dc.SetFontFace(as.fontFace)
		tw, th := dc.MeasureString(initials)
		dc.SetColor(color.White)
		dc.DrawString(initials, avatarSize/2-(tw/2)+5, avatarSize/2+(th/2)-10)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square.
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func pickAvatarColor(userID string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return avatarPalette[int(h.Sum32())%len(avatarPalette)]
}

func computeInitials(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		return firstRuneUpper(fields[0])
	default:
		return firstRuneUpper(fields[0]) + firstRuneUpper(fields[len(fields)-1])
	}
}

// firstRuneUpper takes the first rune, not the first byte, so multibyte
// names keep a valid initial.
func firstRuneUpper(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
