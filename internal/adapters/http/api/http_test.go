package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/traderheat/internal/adapters/http/api"
	"github.com/okian/traderheat/internal/adapters/source"
	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/ingest"
	"github.com/okian/traderheat/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const tagging = "Date,Event,Scheduled for in-play,Assign a trader\n" +
	"01/03/2024 09:10,E1,Yes,Smith\n" +
	"01/03/2024 14:05,E2,No,Jones\n"

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"mode": "upload", "reportsGenerated": 3}
}

func newMux(t *testing.T, opts ...api.Option) *http.ServeMux {
	t.Helper()
	svc, err := service.New()
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func multipartBody(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

func TestReportEndpoint(t *testing.T) {
	Convey("Given the report API", t, func() {
		mux := newMux(t)

		Convey("When a CSV is posted as the raw body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging))
			req.Header.Set("Content-Type", "text/csv")
			rec := serve(mux, req)

			Convey("Then both views should be returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Source string `json:"source"`
					Stats  struct {
						Cleaned int `json:"cleaned"`
					} `json:"stats"`
					Views []struct {
						View     string `json:"view"`
						Rendered bool   `json:"rendered"`
						Grid     struct {
							Traders []string `json:"traders"`
							Slots   []string `json:"slots"`
						} `json:"grid"`
					} `json:"views"`
					Messages []string `json:"messages"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Source, ShouldEqual, "upload.csv")
				So(body.Stats.Cleaned, ShouldEqual, 2)
				So(body.Views, ShouldHaveLength, 2)
				So(body.Views[0].View, ShouldEqual, "in_play")
				So(body.Views[0].Grid.Traders, ShouldResemble, []string{"Smith"})
				So(body.Views[1].Grid.Traders, ShouldResemble, []string{"Jones", "Smith"})
				So(body.Views[1].Grid.Slots, ShouldHaveLength, 16)
				So(body.Messages, ShouldBeEmpty)
			})
		})

		Convey("When a CSV is uploaded as a form file", func() {
			body, ct := multipartBody(t, "file", "trader_tagging_1.csv", tagging)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/report", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(mux, req)

			Convey("Then the file name should be reported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"source":"trader_tagging_1.csv"`)
			})
		})

		Convey("When the form has no file field", func() {
			body, ct := multipartBody(t, "other", "x.csv", tagging)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/report", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(mux, req)

			Convey("Then it should return 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the file has a malformed date", func() {
			csv := "Date,Event,Scheduled for in-play,Assign a trader\n2024-03-01,E1,Yes,Smith\n"
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(csv)))

			Convey("Then it should return 422 with the line number", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				e := decodeError(rec)
				So(e["code"], ShouldEqual, "invalid_input")
				So(e["message"], ShouldContainSubstring, "line 2")
			})
		})

		Convey("When a required column is missing", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader("Date,Event\n")))
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When no event is in play", func() {
			csv := "Date,Event,Scheduled for in-play,Assign a trader\n01/03/2024 10:00,E1,No,Smith\n"
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(csv)))

			Convey("Then the informational message should be included", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "No events scheduled for in-play")
				So(rec.Body.String(), ShouldContainSubstring, `"rendered":false`)
			})
		})

		Convey("When the method is GET", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestArtifactEndpoints(t *testing.T) {
	Convey("Given the report API", t, func() {
		mux := newMux(t)

		Convey("When requesting the total view as PDF", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report.pdf?view=total", strings.NewReader(tagging)))

			Convey("Then a PDF attachment should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, api.ContentTypePDF)
				So(rec.Header().Get("Content-Disposition"), ShouldContainSubstring, "heatmap_total.pdf")
				So(bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")), ShouldBeTrue)
			})
		})

		Convey("When requesting an unknown view", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report.pdf?view=weekly", strings.NewReader(tagging)))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the in-play view is empty", func() {
			csv := "Date,Event,Scheduled for in-play,Assign a trader\n01/03/2024 10:00,E1,No,Smith\n"
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report.pdf", strings.NewReader(csv)))

			Convey("Then no PDF should be produced", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(rec)["code"], ShouldEqual, "view_not_rendered")
			})
		})

		Convey("When requesting the workbook", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report.xlsx", strings.NewReader(tagging)))

			Convey("Then an XLSX attachment should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, api.ContentTypeXLSX)
				So(bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), ShouldBeTrue)
			})
		})
	})
}

func TestLimits(t *testing.T) {
	Convey("Given a server with a small upload cap", t, func() {
		mux := newMux(t, api.WithMaxUploadBytes(16))

		Convey("When the body exceeds it", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging)))

			Convey("Then it should return 413", func() {
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(rec)["code"], ShouldEqual, "too_large")
			})
		})
	})

	Convey("Given a server allowing one request per burst", t, func() {
		mux := newMux(t, api.WithRateLimit(0.001, 1))

		Convey("When a client sends two reports in a row", func() {
			first := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging)))
			second := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging)))

			Convey("Then the second should be rate limited", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(second.Header().Get("Retry-After"), ShouldEqual, "1")
			})
		})

		Convey("When another client sends a report", func() {
			_ = serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging)))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/report", strings.NewReader(tagging))
			req.RemoteAddr = "10.0.0.9:4000"
			rec := serve(mux, req)

			Convey("Then it should have its own budget", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux(t)

		Convey("When scraping /healthz", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When reading /stats", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(rec.Body.String(), ShouldContainSubstring, `"reportsGenerated":3`)
		})

		Convey("When posting to /stats", func() {
			rec := serve(mux, httptest.NewRequest(http.MethodPost, "/stats", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given pipeline errors", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{api.NewKind("op", api.ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{api.NewKind("op", api.ErrRateLimited), http.StatusTooManyRequests, "rate_limited"},
			{fmt.Errorf("x: %w", source.ErrTooLarge), http.StatusRequestEntityTooLarge, "too_large"},
			{fmt.Errorf("x: %w", source.ErrNoFile), http.StatusNotFound, "no_file"},
			{&ingest.LineError{Line: 3, Err: ingest.ErrParseDate}, http.StatusUnprocessableEntity, "invalid_input"},
			{fmt.Errorf("x: %w", service.ErrViewNotRendered), http.StatusNotFound, "view_not_rendered"},
			{errors.New("boom"), http.StatusInternalServerError, "internal"},
		}
		for _, tc := range cases {
			status, code := api.Classify(tc.err)
			So(status, ShouldEqual, tc.status)
			So(code, ShouldEqual, tc.code)
		}
	})

	Convey("Given a kind error", t, func() {
		cause := errors.New("missing field")
		err := api.WrapKind("api.upload", api.ErrBadRequest, cause)

		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.upload: bad request: missing field")
		So(api.NewKind("op", api.ErrRateLimited).Error(), ShouldEqual, "op: rate limited")
	})
}
