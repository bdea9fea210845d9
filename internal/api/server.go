package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/observability"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/transport"
)

const version = "0.1.0"

var (
	ErrTransmitDisabled = errors.New("transmit disabled: no serial port configured")
	ErrNoCommands       = errors.New("no commands given")
)

// Server exposes parsing, packing and decoding over HTTP. When a sink is
// configured, POST /frames can also transmit the packed frames.
type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	parser *command.Parser
	sink   transport.Sink
	router *gin.Engine
}

func New(id, addr string, corsOrigins []string, parser *command.Parser, sink transport.Sink) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		parser:   parser,
		sink:     sink,
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":    s.parser != nil,
			"transmit": s.sink != nil,
			"uptime":   time.Since(s.Appeared).String(),
			"service":  s.ID,
			"version":  version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/parameters", s.handleParameters)
	r.POST("/frames", s.handleFrames)
	r.POST("/decode", s.handleDecode)
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().Str("service", s.ID).Str("addr", s.Addr).Bool("transmit", s.sink != nil).Msg("syfohd listening")
	return s.router.Run(s.Addr)
}

type FramesRequest struct {
	Commands []string `json:"commands"`
	Transmit bool     `json:"transmit"`
}

type FrameResult struct {
	Line      string `json:"line"`
	Hex       string `json:"hex"`
	Parameter int    `json:"parameter"`
	FieldA    int    `json:"field_a"`
	FieldB    int    `json:"field_b"`
	Device    int    `json:"device"`
	Value     uint64 `json:"value"`
	Query     string `json:"query,omitempty"`
	Float     bool   `json:"float,omitempty"`
}

type CommandError struct {
	Line       string `json:"line"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

type FramesResponse struct {
	Frames []FrameResult  `json:"frames"`
	Errors []CommandError `json:"errors"`
	Sent   int            `json:"sent"`
}

func (s *Server) handleFrames(c *gin.Context) {
	var req FramesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Commands) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoCommands.Error()})
		return
	}
	if req.Transmit && s.sink == nil {
		c.JSON(http.StatusConflict, gin.H{"error": ErrTransmitDisabled.Error()})
		return
	}

	resp, err := s.Frames(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "sent": resp.Sent})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Frames parses and packs every command, sending the valid ones in order
// when req.Transmit is set. Rejected lines are reported, not fatal.
func (s *Server) Frames(ctx context.Context, req FramesRequest) (FramesResponse, error) {
	resp := FramesResponse{Frames: []FrameResult{}, Errors: []CommandError{}}
	var frames []sysex.Frame
	for _, line := range req.Commands {
		cmd, err := s.parser.Parse(line)
		if err != nil {
			observability.RecordCommand(command.KindName(err), "rejected")
			resp.Errors = append(resp.Errors, commandError(line, err))
			continue
		}
		kind := "write"
		if cmd.IsQuery {
			kind = "query"
		}
		observability.RecordCommand(kind, "ok")
		f := command.Pack(cmd)
		frames = append(frames, f)
		resp.Frames = append(resp.Frames, frameResult(line, cmd, f))
	}
	if !req.Transmit {
		return resp, nil
	}
	for i, f := range frames {
		if err := s.sink.Send(ctx, f); err != nil {
			observability.RecordFrameSent(s.sink.Name(), false)
			log.Error().Str("sink", s.sink.Name()).Str("line", resp.Frames[i].Line).Err(err).Msg("frame transmit failed")
			return resp, err
		}
		observability.RecordFrameSent(s.sink.Name(), true)
		resp.Sent++
	}
	log.Info().Str("sink", s.sink.Name()).Int("sent", resp.Sent).Msg("frames transmitted")
	return resp, nil
}

func frameResult(line string, cmd command.Command, f sysex.Frame) FrameResult {
	out := FrameResult{
		Line:      line,
		Hex:       f.Hex(),
		Parameter: cmd.Parameter,
		FieldA:    cmd.FieldA,
		FieldB:    cmd.FieldB,
		Device:    cmd.Device,
		Value:     cmd.Value,
		Float:     cmd.FloatEncoded(),
	}
	if cmd.IsQuery {
		out.Query = cmd.Query.String()
	}
	return out
}

func commandError(line string, err error) CommandError {
	out := CommandError{Line: line, Kind: command.KindName(err), Error: err.Error()}
	var perr *command.ParseError
	if errors.As(err, &perr) {
		out.Suggestion = perr.Suggestion
	}
	return out
}

type DecodeRequest struct {
	Hex string `json:"hex"`
}

type DecodeResponse struct {
	ProtocolVersion int      `json:"protocol_version"`
	Device          int      `json:"device"`
	Parameter       int      `json:"parameter"`
	FieldA          int      `json:"field_a"`
	FieldB          int      `json:"field_b"`
	Value           uint64   `json:"value"`
	Float           bool     `json:"float"`
	Aliases         []string `json:"aliases,omitempty"`
}

func (s *Server) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := sysex.ParseHex(req.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, _ := sysex.Unpack(f[:])
	resp := DecodeResponse{
		ProtocolVersion: m.ProtocolVersion,
		Device:          m.Device,
		Parameter:       m.Parameter &^ sysex.FloatFlag,
		FieldA:          m.FieldA,
		FieldB:          m.FieldB,
		Value:           m.Value,
		Float:           m.Parameter&sysex.FloatFlag != 0,
	}
	resp.Aliases = s.parser.Catalog().Aliases(resp.Parameter)
	c.JSON(http.StatusOK, resp)
}

type FieldInfo struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

type ParameterInfo struct {
	Number  int        `json:"number"`
	Aliases []string   `json:"aliases"`
	Kind    string     `json:"kind"`
	FieldA  *FieldInfo `json:"field_a,omitempty"`
	FieldB  *FieldInfo `json:"field_b,omitempty"`
	Values  []string   `json:"values,omitempty"`
}

func (s *Server) handleParameters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"parameters": Parameters(s.parser.Catalog())})
}

// Parameters lists every described parameter in number order.
func Parameters(c *catalog.Catalog) []ParameterInfo {
	descs := c.Descriptors()
	out := make([]ParameterInfo, 0, len(descs))
	for _, d := range descs {
		info := ParameterInfo{
			Number:  d.Number,
			Aliases: c.Aliases(d.Number),
			Kind:    d.Kind.String(),
			FieldA:  fieldInfo(d, catalog.SlotA),
			FieldB:  fieldInfo(d, catalog.SlotB),
			Values:  d.ValueNames(),
		}
		if info.Aliases == nil {
			info.Aliases = []string{}
		}
		out = append(out, info)
	}
	return out
}

func fieldInfo(d catalog.Descriptor, slot catalog.Slot) *FieldInfo {
	name := d.FieldName(slot)
	if name == "" {
		return nil
	}
	return &FieldInfo{Name: name, Values: d.FieldValueNames(slot)}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
