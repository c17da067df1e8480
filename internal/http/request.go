package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// readBody reads the whole request body. An empty body is a bad request.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, badRequest(fmt.Errorf("read body: %w", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, badRequest(errors.New("request body is required"))
	}
	return body, nil
}

// queryInt reads an optional integer query parameter. Missing means def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%s must be an integer", name))
	}
	return n, nil
}

// queryYear reads the optional "year" parameter. Zero means the current year.
func queryYear(r *http.Request) (int, error) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		return 0, err
	}
	if year != 0 && (year < 1900 || year > 9999) {
		return 0, badRequest(errors.New("year out of range"))
	}
	return year, nil
}
