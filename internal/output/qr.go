package output

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// QRConfig controls how deeplinks are drawn as terminal QR codes.
type QRConfig struct {
	// Level is the preferred error correction level. Links too long for it
	// are encoded at the next lower level, down to qr.L.
	Level qr.Level
	// QuietZone is the blank border, in modules.
	QuietZone int
	// HalfBlocks packs two rows per text line.
	HalfBlocks bool
}

// DefaultQRConfig prefers medium error correction with a compact layout.
func DefaultQRConfig() QRConfig {
	return QRConfig{Level: qr.M, QuietZone: 1, HalfBlocks: true}
}

// CanRenderQR reports whether w is a terminal a QR code can be drawn on.
func CanRenderQR(w io.Writer) bool {
	return IsTerminal(w)
}

// FitQR returns the highest level at or below cfg.Level that can encode data.
func FitQR(data string, cfg QRConfig) (qr.Level, error) {
	for level := cfg.Level; level >= qr.L; level-- {
		if _, err := qr.Encode(data, level); err == nil {
			return level, nil
		}
	}
	return cfg.Level, fmt.Errorf("deeplink of %d bytes does not fit in a qr code", len(data))
}

// ValidateQR reports whether data fits in a QR code at any level cfg allows.
func ValidateQR(data string, cfg QRConfig) error {
	_, err := FitQR(data, cfg)
	return err
}

// RenderQR draws data on w when w is a terminal and does nothing otherwise.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if !CanRenderQR(w) {
		return nil
	}
	return WriteQR(w, data, cfg)
}

// WriteQR draws data on any writer.
func WriteQR(w io.Writer, data string, cfg QRConfig) error {
	level, err := FitQR(data, cfg)
	if err != nil {
		return err
	}
	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}
