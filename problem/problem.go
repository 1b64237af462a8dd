package problem

// rfc 7807
// "application/problem+json" media type
// problem.Type should be an URI; for standard http error messages keep
// it empty or "about:blank", the title is then the http status text
import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/readium/readium-shelf-server/localization"
	"github.com/readium/readium-shelf-server/logging"
)

const ContentType_PROBLEM_JSON = "application/problem+json"

type Problem struct {
	Type string `json:"type,omitempty"`
	//optionnal
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"` //if present = http response code
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	//Additional members
}

// Error writes a problem+json response, localized for the request's
// Accept-Language when translations are loaded.
func Error(w http.ResponseWriter, r *http.Request, problem Problem, status int) {
	acceptLanguages := r.Header.Get("Accept-Language")

	w.Header().Set("Content-Type", ContentType_PROBLEM_JSON)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	problem.Status = status

	if problem.Type == "" || problem.Type == "about:blank" {
		// lookup Title, statusText should match the http status
		localization.LocalizeMessage(acceptLanguages, &problem.Title, http.StatusText(status))
	} else {
		localization.LocalizeMessage(acceptLanguages, &problem.Title, problem.Title)
		localization.LocalizeMessage(acceptLanguages, &problem.Detail, problem.Detail)
	}

	jsonError, e := json.Marshal(problem)
	if e != nil {
		http.Error(w, "{}", status)
		return
	}
	w.WriteHeader(status)
	w.Write(jsonError)

	log.Print(string(jsonError))
}

// NotFoundHandler answers every request that matched no route.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	Error(w, r, Problem{Instance: r.URL.Path}, http.StatusNotFound)
}

// PanicReport is called by the recovery middleware. The report also
// goes to the log file and the Slack channel when configured.
func PanicReport(err interface{}) {
	switch t := err.(type) {
	case error:
		logging.Print("Panic recovery (error): " + t.Error())
	case string:
		logging.Print("Panic recovery (string): " + t)
	default:
		logging.Printf("Panic recovery (other): %v", t)
	}
}
