// Package interactions serves the chat platform's interactions webhook.
// Button presses on intake panels and the delete-channel affordance arrive
// here as signed POST requests and are dispatched to the primary ports.
package interactions

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
)

const maxBodyBytes = 1 << 20

// handlerTimeout bounds one dispatched interaction.
const handlerTimeout = 10 * time.Second

// Services are the primary ports the endpoint dispatches to.
type Services struct {
	Cases     primary.CaseService
	Panels    primary.PanelService
	Lifecycle primary.LifecycleService
}

// Server handles interaction webhooks.
type Server struct {
	publicKey ed25519.PublicKey
	services  Services
	logger    *zap.SugaredLogger
	router    *mux.Router
}

// ParsePublicKey decodes the application's hex-encoded Ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// NewServer creates the interactions server and its routes.
func NewServer(publicKey ed25519.PublicKey, services Services, logger *zap.SugaredLogger) *Server {
	s := &Server{publicKey: publicKey, services: services, logger: logger}

	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	r.HandleFunc("/interactions", s.interactionsHandler).Methods(http.MethodPost)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("interactions endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down interactions endpoint: %w", err)
		}
		return nil
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"alive": true}`)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugw("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) interactionsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !discordgo.VerifyInteraction(r, s.publicKey) {
		s.logger.Warnw("interaction signature rejected", "remote", r.RemoteAddr)
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	switch in.Type {
	case discordgo.InteractionPing:
		writeJSON(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	case discordgo.InteractionMessageComponent:
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		writeJSON(w, s.dispatch(ctx, &in))
	default:
		writeJSON(w, ephemeral("This interaction is not supported."))
	}
}

// dispatch routes a button press by its custom id.
func (s *Server) dispatch(ctx context.Context, in *discordgo.Interaction) *discordgo.InteractionResponse {
	actor := actorID(in)
	channelID := snowflake(in.ChannelID)
	logger := s.logger.With("interaction_id", in.ID, "request_id", uuid.NewString(), "user_id", actor, "channel_id", channelID)
	if actor == 0 {
		return ephemeral("This button only works inside the server.")
	}
	ctx = ctxutil.WithActorID(ctx, actor)

	customID := in.MessageComponentData().CustomID
	_, isIntake := caselife.ParseIntakeButtonID(customID)
	switch {
	case customID == caselife.DeleteButtonID:
		err := s.services.Lifecycle.DeleteChannel(ctx, primary.CaseActionRequest{ChannelID: channelID})
		if err != nil {
			return s.failure(logger, customID, err)
		}
		logger.Infow("case channel deleted from button")
		return ephemeral("The channel is being deleted.")

	case isIntake:
		panel, err := s.services.Panels.ResolveButton(ctx, customID)
		if err != nil {
			return s.failure(logger, customID, err)
		}
		resp, err := s.services.Cases.OpenCase(ctx, primary.OpenCaseRequest{CategoryID: panel.CategoryID})
		if err != nil {
			return s.failure(logger, customID, err)
		}
		logger.Infow("case opened from panel", "case_id", resp.Case.ID, "category_id", panel.CategoryID)
		return ephemeral(fmt.Sprintf("Case #%d has been created: <#%d>", resp.Case.ID, resp.Case.ChannelID))

	default:
		logger.Warnw("unknown button", "custom_id", customID)
		return ephemeral("This button is no longer in use.")
	}
}

// failure turns a service error into an ephemeral reply. Classified errors
// carry a user-safe message; anything else is logged and reported
// generically.
func (s *Server) failure(logger *zap.SugaredLogger, customID string, err error) *discordgo.InteractionResponse {
	switch courterr.KindOf(err) {
	case courterr.KindValidation, courterr.KindNotFound, courterr.KindPermission, courterr.KindConflict:
		logger.Infow("interaction rejected", "custom_id", customID, "error", err)
		return ephemeral(courterr.Message(err))
	default:
		logger.Errorw("interaction failed", "custom_id", customID, "error", err)
		return ephemeral("Something went wrong. Please try again or contact a judge.")
	}
}

// actorID is the pressing member. Presses outside a guild carry no member
// and yield 0.
func actorID(in *discordgo.Interaction) int64 {
	if in.Member == nil || in.Member.User == nil {
		return 0
	}
	return snowflake(in.Member.User.ID)
}

func snowflake(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
