package api

import (
	"encoding/json"
	"net/http"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

type infoResponseStruct struct {
	Sources []atlaslib.SourceStatus `json:"sources"`
	Stats   atlaslib.Stats          `json:"stats"`
}

type detailsResponseStruct struct {
	Result atlaslib.IPDetails `json:"result"`
}

type locationResponseStruct struct {
	IP       string `json:"ip"`
	Location string `json:"location"`
}

type resolveRequestStruct struct {
	IPs []string `json:"ips"`
}

type resolveResponseStruct struct {
	Results map[string][]atlaslib.QueryResult `json:"results"`
}

type errorResponseStruct struct {
	Error struct {
		Message string `json:"message"`
		Context string `json:"context,omitempty"`
	} `json:"error"`
}

func encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func decodeJSON(req *http.Request, data interface{}) error {
	defer req.Body.Close() // nolint: errcheck

	return json.NewDecoder(req.Body).Decode(data)
}

func sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := errorResponseStruct{}
	response.Error.Message = message

	if err != nil {
		response.Error.Context = err.Error()
	}

	w.WriteHeader(statusCode)
	encodeJSON(w, response)
}
