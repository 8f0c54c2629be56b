package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TeoCir/IsekkKran/internal/converter"
	"github.com/TeoCir/IsekkKran/internal/report"
	"github.com/TeoCir/IsekkKran/internal/xlsxwriter"
)

// downloadBaseName is the file name of every download, without extension.
const downloadBaseName = "fraksjonsoversikt"

// =============================================================================
// REQUEST AND RESPONSE SHAPES
// =============================================================================

// reportParams are the optional query or form parameters of a report
// request. Unset pointers fall back to the configured defaults.
type reportParams struct {
	// Units restricts the columns; "KG,ST" and repeated units=KG both work.
	Units []string `form:"units"`

	// FlatText adds the flat text to the JSON response.
	FlatText bool `form:"flat_text"`

	Delimiter       *string `form:"delimiter"`
	IncludeSum      *bool   `form:"include_sum"`
	Decimals        *int    `form:"decimals"`
	DisplayDecimals *int    `form:"display_decimals"`
}

type statsResponse struct {
	InputRows           int      `json:"input_rows"`
	DroppedUnitRows     int      `json:"dropped_unit_rows"`
	DroppedFractionRows int      `json:"dropped_fraction_rows"`
	UnparsedQuantities  int      `json:"unparsed_quantities"`
	UnitsFound          []string `json:"units_found"`
}

type reportResponse struct {
	report.DisplayTable
	FlatText string        `json:"flat_text,omitempty"`
	Stats    statsResponse `json:"stats"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Level   string   `json:"level"`
	Missing []string `json:"missing,omitempty"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	rep, _, ok := s.buildReport(c, false)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, reportResponse{
		DisplayTable: rep.Display,
		FlatText:     rep.FlatText,
		Stats: statsResponse{
			InputRows:           rep.Stats.InputRows,
			DroppedUnitRows:     rep.Stats.DroppedUnitRows,
			DroppedFractionRows: rep.Stats.DroppedFractionRows,
			UnparsedQuantities:  rep.Stats.UnparsedQuantities,
			UnitsFound:          rep.Stats.UnitsFound,
		},
	})
}

func (s *Server) handleWorkbook(c *gin.Context) {
	rep, _, ok := s.buildReport(c, false)
	if !ok {
		return
	}

	data, err := s.conv.Workbook(rep)
	if err != nil {
		s.abort(c, err)
		return
	}
	download(c, downloadBaseName+".xlsx", xlsxwriter.MIME, data)
}

func (s *Server) handleFlatText(c *gin.Context) {
	rep, opt, ok := s.buildReport(c, true)
	if !ok {
		return
	}

	delim := opt.FlatText.Delimiter
	download(c,
		downloadBaseName+report.FlatTextExtension(delim),
		report.FlatTextMIME(delim)+"; charset=utf-8",
		[]byte(rep.FlatText))
}

// buildReport reads the upload and runs the pipeline. It writes the error
// response itself and returns false on failure.
func (s *Server) buildReport(c *gin.Context, forceFlatText bool) (*report.Report, report.Options, bool) {
	limit := s.uploadLimit()
	if c.Request.ContentLength > limit {
		s.abortStatus(c, http.StatusRequestEntityTooLarge, "too_large",
			fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
		return nil, report.Options{}, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var params reportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		s.abortStatus(c, http.StatusBadRequest, "bad_request", err.Error())
		return nil, report.Options{}, false
	}
	if err := c.ShouldBind(&params); err != nil {
		s.abortUpload(c, err)
		return nil, report.Options{}, false
	}

	opt, err := s.options(params, forceFlatText)
	if err != nil {
		s.abortStatus(c, http.StatusBadRequest, "bad_request", err.Error())
		return nil, report.Options{}, false
	}

	name, data, err := readUpload(c)
	if err != nil {
		s.abortUpload(c, err)
		return nil, report.Options{}, false
	}

	rep, err := s.conv.Convert(c.Request.Context(), name, data, opt)
	if err != nil {
		s.abort(c, err)
		return nil, report.Options{}, false
	}
	return rep, opt, true
}

// options merges request parameters over the configured defaults.
func (s *Server) options(p reportParams, forceFlatText bool) (report.Options, error) {
	opt := report.Options{Units: splitUnits(p.Units)}
	if len(opt.Units) == 0 {
		opt.Units = s.cfg.Units
	}

	if p.DisplayDecimals != nil {
		if *p.DisplayDecimals < 0 {
			return opt, fmt.Errorf("display_decimals must not be negative")
		}
		opt.Display = report.FormatOptions{Fixed: true, Decimals: *p.DisplayDecimals}
	}

	if !p.FlatText && !forceFlatText {
		return opt, nil
	}

	delimName := s.cfg.FlatText.Delimiter
	if p.Delimiter != nil {
		delimName = *p.Delimiter
	}
	delim, err := report.ParseDelimiter(delimName)
	if err != nil {
		return opt, err
	}

	ft := report.FlatTextOptions{
		Delimiter:  delim,
		IncludeSum: s.cfg.FlatText.IncludeSum,
		Decimals:   s.cfg.FlatText.Decimals,
	}
	if p.IncludeSum != nil {
		ft.IncludeSum = *p.IncludeSum
	}
	if p.Decimals != nil {
		if *p.Decimals < 0 {
			return opt, fmt.Errorf("decimals must not be negative")
		}
		ft.Decimals = *p.Decimals
	}
	opt.FlatText = &ft
	return opt, nil
}

func splitUnits(values []string) []string {
	var units []string
	for _, v := range values {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				units = append(units, u)
			}
		}
	}
	return units
}

func readUpload(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

func download(c *gin.Context, filename, mime string, data []byte) {
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	c.Data(http.StatusOK, mime, data)
}

// =============================================================================
// ERROR RESPONSES
// =============================================================================

// abort maps a pipeline error to its status code.
func (s *Server) abort(c *gin.Context, err error) {
	_ = c.Error(err)

	resp := errorResponse{Error: err.Error(), Kind: converter.ErrorKind(err), Level: "error"}
	status := http.StatusInternalServerError

	var schema *report.SchemaError
	switch resp.Kind {
	case "unreadable":
		status = http.StatusBadRequest
	case "schema":
		status = http.StatusUnprocessableEntity
		if errors.As(err, &schema) {
			resp.Missing = schema.Missing
		}
	case "no_usable_units":
		status = http.StatusUnprocessableEntity
		resp.Level = "warning"
	case "canceled":
		status = http.StatusServiceUnavailable
	default:
		resp.Error = "internal error"
	}

	c.AbortWithStatusJSON(status, resp)
}

// abortUpload reports a missing, oversized or malformed upload.
func (s *Server) abortUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.abortStatus(c, http.StatusRequestEntityTooLarge, "too_large",
			fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
		return
	}
	if errors.Is(err, http.ErrMissingFile) {
		s.abortStatus(c, http.StatusBadRequest, "bad_request", `missing form file "file"`)
		return
	}
	s.abortStatus(c, http.StatusBadRequest, "bad_request", err.Error())
}

func (s *Server) abortStatus(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Kind: kind, Level: "error"})
}
