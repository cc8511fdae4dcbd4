// Package extraction turns free text, receipts and voice notes into draft expense fields.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindText  Kind = "texto"
	KindImage Kind = "imagen"
	KindAudio Kind = "audio"
)

// Input is one inbound message. Data carries the photo or voice note bytes.
type Input struct {
	Kind     Kind
	Text     string
	Data     []byte
	MIMEType string
}

const promptTemplate = `Sos un asistente que extrae gastos de mensajes.
La fecha de hoy es %s.
Las categorías válidas son: %s.
Devolvé únicamente un objeto JSON con esta forma:
{"monto": number, "fecha": "DD-MM-YYYY", "categoria": string, "descripcion": string}
Si la fecha no se menciona usá la de hoy. Si un dato no aparece dejalo como cadena vacía o null.
La categoría debe ser una de las válidas.`

const transcribePrompt = `Transcribí este audio en español. Respondé solo con el texto transcripto.`

type Extractor struct {
	gen        Generator
	transcoder Transcoder
	timeout    time.Duration
	now        func() time.Time
	log        *logrus.Logger
}

func NewExtractor(gen Generator, transcoder Transcoder, timeout time.Duration, log *logrus.Logger) *Extractor {
	return &Extractor{gen: gen, transcoder: transcoder, timeout: timeout, now: time.Now, log: log}
}

// Extract returns the fields found in in, or nil when the model output was unusable.
// Errors are reserved for failed calls to the model or the transcoder.
func (e *Extractor) Extract(ctx context.Context, in Input, categories []string) (*Result, error) {
	prompt := buildPrompt(e.now(), categories)

	switch in.Kind {
	case KindText:
		if strings.TrimSpace(in.Text) == "" {
			return nil, nil
		}
		return e.complete(ctx, prompt+"\n\nMensaje: "+in.Text, nil)
	case KindImage:
		mime := in.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		if caption := strings.TrimSpace(in.Text); caption != "" {
			prompt += "\n\nMensaje: " + caption
		}
		return e.complete(ctx, prompt, &Media{Data: in.Data, MIMEType: mime})
	case KindAudio:
		text, err := e.Transcribe(ctx, in.Data)
		if err != nil {
			return nil, err
		}
		return e.complete(ctx, prompt+"\n\nMensaje: "+text, nil)
	}
	return nil, fmt.Errorf("unsupported input kind %q", in.Kind)
}

// Transcribe converts a voice note to text.
func (e *Extractor) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if e.transcoder == nil {
		return "", errors.New("audio transcoding is not configured")
	}
	mp3, err := e.transcoder.ToMP3(ctx, audio)
	if err != nil {
		return "", err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	text, err := e.gen.Generate(ctx, transcribePrompt, &Media{Data: mp3, MIMEType: "audio/mpeg"})
	if err != nil {
		return "", fmt.Errorf("error transcribing audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) complete(ctx context.Context, prompt string, media *Media) (*Result, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	text, err := e.gen.Generate(ctx, prompt, media)
	extractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	res := parseResult(text)
	if res == nil {
		e.log.WithField("length", len(text)).Warn("could not parse extraction output")
	}
	return res, nil
}

func (e *Extractor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func buildPrompt(now time.Time, categories []string) string {
	return fmt.Sprintf(promptTemplate, now.Format("02-01-2006"), strings.Join(categories, ", "))
}
