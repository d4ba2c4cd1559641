package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/pipeaudit/internal/adapters/http/api"
	"github.com/okian/pipeaudit/internal/app"
	"github.com/okian/pipeaudit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubAuditor records the rows it was handed and returns a canned report.
type stubAuditor struct {
	dealRows     []model.RawRecord
	activityRows []model.RawRecord
	err          error
}

func (s *stubAuditor) Run(_ context.Context, dealRows, activityRows []model.RawRecord) (*app.Report, error) {
	s.dealRows = dealRows
	s.activityRows = activityRows
	if s.err != nil {
		return nil, s.err
	}
	return &app.Report{RunID: "run-test", DealCount: len(dealRows)}, nil
}

func multipartBody(parts map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range parts {
		fw, err := mw.CreateFormFile(name, name+".csv")
		So(err, ShouldBeNil)
		_, err = fw.Write([]byte(content))
		So(err, ShouldBeNil)
	}
	So(mw.Close(), ShouldBeNil)
	return &buf, mw.FormDataContentType()
}

func newMux(auditor api.Auditor) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(auditor).Register(context.Background(), mux)
	return mux
}

func TestHandlePostAudit(t *testing.T) {
	Convey("Given an audit server", t, func() {
		auditor := &stubAuditor{}
		mux := newMux(auditor)

		Convey("When both exports are posted", func() {
			body, contentType := multipartBody(map[string]string{
				"deals":      "deal_id,name\nD1,Acme\n",
				"activities": "deal_id,ts\nD1,2024-04-02\n",
			})
			req := httptest.NewRequest(http.MethodPost, "/audit", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the report is returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")

				var rep app.Report
				So(json.Unmarshal(rec.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.RunID, ShouldEqual, "run-test")
			})

			Convey("And the parsed rows reach the auditor", func() {
				So(auditor.dealRows, ShouldHaveLength, 1)
				So(auditor.dealRows[0]["deal_id"], ShouldEqual, "D1")
				So(auditor.activityRows, ShouldHaveLength, 1)
			})
		})

		Convey("When the activities part is absent", func() {
			body, contentType := multipartBody(map[string]string{
				"deals": "deal_id\nD1\n",
			})
			req := httptest.NewRequest(http.MethodPost, "/audit", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the audit still runs without activities", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(auditor.activityRows, ShouldBeNil)
			})
		})

		Convey("When the deals part is missing", func() {
			body, contentType := multipartBody(map[string]string{
				"activities": "deal_id,ts\nD1,2024-04-02\n",
			})
			req := httptest.NewRequest(http.MethodPost, "/audit", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "deals")
			})
		})

		Convey("When the body is not multipart", func() {
			req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewBufferString("deal_id\nD1\n"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the method is not POST", func() {
			req := httptest.NewRequest(http.MethodGet, "/audit", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it is not allowed", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When the audit itself fails", func() {
			auditor.err = errors.New("boom")
			body, contentType := multipartBody(map[string]string{
				"deals": "deal_id\nD1\n",
			})
			req := httptest.NewRequest(http.MethodPost, "/audit", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the failure maps to a 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newMux(&stubAuditor{})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Convey("Then it reports ok", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})
	})
}
