// Package api serves the JSON wire protocol over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzhttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/liuxd6825/iedriver/command"
	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dom"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/window"
)

// DocumentCapability is the desired capability holding the markup a new
// hosted session loads.
const DocumentCapability = "iedriver:document"

// maxBodySize bounds request bodies.
const maxBodySize = 8 << 20

// Driver owns the sessions served by the wire protocol handler.
type Driver struct {
	Registry *session.Registry
	Finder   *common.ElementFinder
	Options  session.Options
	Version  string
	Logger   *log.Logger
}

type route struct {
	method, path string
	handler      *command.Handler
}

// NewHandler returns the router for d.
func NewHandler(d *Driver) http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		writeError(rw, d.Logger, "", common.UnknownCommand, fmt.Sprintf("Unknown command: %s %s", r.Method, r.URL.Path))
	})
	router.MethodNotAllowed = router.NotFound
	router.PanicHandler = func(rw http.ResponseWriter, _ *http.Request, v interface{}) {
		writeError(rw, d.Logger, "", common.UnhandledError, fmt.Sprint(v))
	}

	router.GET("/status", d.handleStatus)
	router.POST("/session", d.handleNewSession)
	router.DELETE("/session/:sessionId", d.handleDeleteSession)
	router.POST("/session/:sessionId/document", d.handleLoadDocument)

	for _, rt := range []route{
		{http.MethodPost, "/session/:sessionId/element", command.NewHandler("findElement", command.NewFindElement(), d.Logger)},
		{http.MethodPost, "/session/:sessionId/elements", command.NewHandler("findElements", command.NewFindElements(), d.Logger)},
		{http.MethodPost, "/session/:sessionId/element/:id/element", command.NewHandler("findChildElement", command.NewFindChildElement(), d.Logger)},
		{http.MethodPost, "/session/:sessionId/element/:id/elements", command.NewHandler("findChildElements", command.NewFindChildElements(), d.Logger)},
		{http.MethodPost, "/session/:sessionId/execute", command.NewHandler("executeScript", command.NewExecuteScript(d.Logger), d.Logger)},
		{http.MethodPost, "/session/:sessionId/accept_alert", command.NewHandler("acceptAlert", command.NewAcceptAlert(d.Logger), d.Logger)},
		{http.MethodPost, "/session/:sessionId/dismiss_alert", command.NewHandler("dismissAlert", command.NewDismissAlert(d.Logger), d.Logger)},
		{http.MethodGet, "/session/:sessionId/alert_text", command.NewHandler("getAlertText", command.GetAlertText{}, d.Logger)},
	} {
		router.Handle(rt.method, rt.path, d.commandHandle(rt.handler))
	}
	return router
}

// GetServer returns a http.Server serving the wire protocol on addr.
// Large responses are gzip compressed for clients that accept it.
func GetServer(addr string, d *Driver) *http.Server {
	mux := withLoggingHandler(d.Logger.Log, gzhttp.GzipHandler(NewHandler(d)))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}

func (d *Driver) commandHandle(h *command.Handler) httprouter.Handle {
	return func(rw http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sid := ps.ByName("sessionId")
		sess, ok := d.Registry.Get(sid)
		if !ok {
			writeError(rw, d.Logger, sid, common.NoSuchDriver, "Session not found: "+sid)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			writeError(rw, d.Logger, sid, common.UnhandledError, err.Error())
			return
		}

		locator := command.Parameters{}
		for _, p := range ps {
			locator[p.Key] = p.Value
		}
		writeResponse(rw, d.Logger, h.Execute(r.Context(), sess, locator, body))
	}
}

func (d *Driver) handleStatus(rw http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeResponse(rw, d.Logger, &command.Response{
		Status: common.Success,
		Value: map[string]any{
			"build":    map[string]string{"version": d.Version},
			"sessions": d.Registry.IDs(),
		},
	})
}

func (d *Driver) handleNewSession(rw http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil || (len(body) > 0 && !gjson.ValidBytes(body)) {
		writeError(rw, d.Logger, "", common.UnhandledError, "Malformed parameters: body is not valid JSON")
		return
	}
	markup := gjson.GetBytes(body, "desiredCapabilities."+DocumentCapability).String()

	browser, err := dom.NewBrowser(window.NewDesktop(), d.Logger)
	if err != nil {
		writeError(rw, d.Logger, "", common.UnhandledError, err.Error())
		return
	}
	if _, err := browser.Load(markup); err != nil {
		browser.Close()
		writeError(rw, d.Logger, "", common.UnhandledError, err.Error())
		return
	}

	sess := session.New(browser, d.Finder, d.Options, d.Logger)
	d.Registry.Add(sess)
	d.Logger.Infof("Driver:NewSession", "sid:%s", sess.ID())
	writeResponse(rw, d.Logger, &command.Response{
		SessionID: sess.ID(),
		Status:    common.Success,
		Value:     map[string]any{"browserName": "internet explorer", "javascriptEnabled": true},
	})
}

func (d *Driver) handleDeleteSession(rw http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sid := ps.ByName("sessionId")
	sess, ok := d.Registry.Remove(sid)
	if !ok {
		writeError(rw, d.Logger, sid, common.NoSuchDriver, "Session not found: "+sid)
		return
	}
	sess.Close()
	d.Logger.Infof("Driver:DeleteSession", "sid:%s", sid)
	writeResponse(rw, d.Logger, &command.Response{SessionID: sid, Status: common.Success})
}

// documentLoader is implemented by hosted browsers.
type documentLoader interface {
	Load(markup string) (*dom.Document, error)
}

func (d *Driver) handleLoadDocument(rw http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sid := ps.ByName("sessionId")
	sess, ok := d.Registry.Get(sid)
	if !ok {
		writeError(rw, d.Logger, sid, common.NoSuchDriver, "Session not found: "+sid)
		return
	}
	loader, ok := sess.Browser().(documentLoader)
	if !ok {
		writeError(rw, d.Logger, sid, common.UnknownCommand, "Session browser cannot load documents")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil || !gjson.ValidBytes(body) {
		writeError(rw, d.Logger, sid, common.UnhandledError, "Malformed parameters: body is not valid JSON")
		return
	}
	markup := gjson.GetBytes(body, "html")
	if markup.Type != gjson.String {
		writeError(rw, d.Logger, sid, common.UnhandledError, "Missing parameter: html")
		return
	}

	err = sess.Executor().Run(r.Context(), func() error {
		doc, err := loader.Load(markup.String())
		if err != nil {
			return err
		}
		dropped := sess.Elements().RetainDocument(doc.ID())
		d.Logger.Debugf("Driver:LoadDocument", "sid:%s doc:%s dropped:%d", sid, doc.ID(), dropped)
		return nil
	})
	if err != nil {
		writeError(rw, d.Logger, sid, common.StatusFromError(err), err.Error())
		return
	}
	writeResponse(rw, d.Logger, &command.Response{SessionID: sid, Status: common.Success})
}

func httpStatus(s common.Status) int {
	switch s {
	case common.Success:
		return http.StatusOK
	case common.NoSuchElement, common.NoAlertOpen, common.NoSuchDriver, common.UnknownCommand:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(rw http.ResponseWriter, logger *log.Logger, sid string, status common.Status, message string) {
	resp := &command.Response{SessionID: sid}
	resp.SetErrorResponse(status, message)
	writeResponse(rw, logger, resp)
}

func writeResponse(rw http.ResponseWriter, logger *log.Logger, resp *command.Response) {
	data, err := resp.Serialize()
	if err != nil {
		logger.Errorf("Driver:writeResponse", "sid:%s serialize: %v", resp.SessionID, err)
		resp = &command.Response{SessionID: resp.SessionID}
		resp.SetErrorResponse(common.UnhandledError, err.Error())
		data, _ = json.Marshal(resp)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(httpStatus(resp.Status))
	if _, err := rw.Write(data); err != nil {
		logger.Warnf("Driver:writeResponse", "sid:%s write: %v", resp.SessionID, err)
	}
}

type wrappedResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrappedResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withLoggingHandler returns the middleware which logs response status for request.
func withLoggingHandler(l logrus.FieldLogger, next http.Handler) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		wrapped := &wrappedResponseWriter{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		l.WithField("status", wrapped.status).Debugf("%s %s", r.Method, r.URL.Path)
	}
}

// Shutdown stops srv and closes every session of d.
func Shutdown(ctx context.Context, srv *http.Server, d *Driver) error {
	err := srv.Shutdown(ctx)
	d.Registry.CloseAll()
	return err
}
