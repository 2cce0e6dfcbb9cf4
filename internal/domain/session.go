package domain

// ArtifactVariant names one of the stored image files of a capture.
type ArtifactVariant string

const (
	VariantOriginal ArtifactVariant = "full"
	VariantPreview  ArtifactVariant = "preview"
	VariantAI       ArtifactVariant = "ai"
)

func ParseArtifactVariant(s string) (ArtifactVariant, error) {
	switch v := ArtifactVariant(s); v {
	case VariantOriginal, VariantPreview, VariantAI:
		return v, nil
	}
	return "", NewValidationError("invalid method %q specified", s)
}

// SessionState is the part of a visitor's session that a checkout snapshots
// before handing control to the gateway's hosted page.
type SessionState struct {
	FrameKey         string `json:"photo_size,omitempty"`
	PreviousFrameKey string `json:"old_photo_size,omitempty"`
	FrameLabel       string `json:"frame_data,omitempty"`
	Price            string `json:"price,omitempty"`
	Width            int    `json:"image_width,omitempty"`
	Height           int    `json:"image_height,omitempty"`

	OriginalFilename string `json:"full_image_filename,omitempty"`
	OriginalPath     string `json:"full_image_path,omitempty"`
	PreviewFilename  string `json:"preview_image_filename,omitempty"`
	PreviewPath      string `json:"preview_image_path,omitempty"`
	AIFilename       string `json:"ai_image_filename,omitempty"`
	AIPath           string `json:"ai_image_path,omitempty"`

	PaymentRequestID string `json:"payment_request_id,omitempty"`
}

// Session is the per-visitor context bridging the multi-step browser flow.
// It is only ever a hint about which records to re-read, never proof of payment.
type Session struct {
	ID string `json:"session_id"`
	SessionState

	// CameraState survives Reset so camera negotiation is not redone.
	CameraState string `json:"camera_state,omitempty"`

	PaymentToken string        `json:"payment_token,omitempty"`
	Original     *SessionState `json:"original_session,omitempty"`
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

func (s *Session) SelectFrame(f Frame) {
	if s.FrameKey != "" && s.FrameKey != f.Key {
		s.PreviousFrameKey = s.FrameKey
	}
	s.FrameKey = f.Key
	s.FrameLabel = f.Label
	s.Price = f.Price.StringFixed(2)
	s.Width = f.Width
	s.Height = f.Height
}

func (s *Session) RecordArtifact(variant ArtifactVariant, filename, path string) {
	switch variant {
	case VariantOriginal:
		s.OriginalFilename, s.OriginalPath = filename, path
	case VariantPreview:
		s.PreviewFilename, s.PreviewPath = filename, path
	case VariantAI:
		s.AIFilename, s.AIPath = filename, path
	}
}

// DeliverableFilename is the file the visitor pays for: the AI variant when
// one was produced, the original capture otherwise.
func (s *Session) DeliverableFilename() string {
	if s.AIFilename != "" {
		return s.AIFilename
	}
	return s.OriginalFilename
}

// ArtifactPaths lists every file this session wrote.
func (s *Session) ArtifactPaths() []string {
	var paths []string
	for _, p := range []string{s.OriginalPath, s.PreviewPath, s.AIPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (s *Session) ClearCapture() {
	s.OriginalFilename, s.OriginalPath = "", ""
	s.PreviewFilename, s.PreviewPath = "", ""
	s.AIFilename, s.AIPath = "", ""
}

// BeginCheckout stores the opaque payment token alongside a snapshot of the
// current state so it can be rebuilt when the gateway redirects back.
func (s *Session) BeginCheckout(paymentToken, paymentRequestID string) {
	s.PaymentRequestID = paymentRequestID
	s.PaymentToken = paymentToken
	snapshot := s.SessionState
	s.Original = &snapshot
}

func (s *Session) HasOpenCheckout() bool {
	return s.PaymentToken != ""
}

// ResumeFromGateway restores the snapshot taken by BeginCheckout and discards
// the payment token.
func (s *Session) ResumeFromGateway() error {
	if !s.HasOpenCheckout() {
		return NewValidationError("invalid session token")
	}
	if s.Original != nil {
		s.SessionState = *s.Original
	}
	s.PaymentToken = ""
	s.Original = nil
	return nil
}

// Reset clears everything except the session id and the reserved camera state.
func (s *Session) Reset() {
	*s = Session{ID: s.ID, CameraState: s.CameraState}
}
