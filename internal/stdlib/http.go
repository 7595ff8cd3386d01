package stdlib

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// httpTimeout mirrors the teacher's builtins_http.go default client timeout.
var httpTimeout = 30 * time.Second

// httpEntries wraps net/http the way the teacher's builtins_http.go does —
// get/post returning Result<String,String> — trimmed to the synchronous
// client calls an embedded engine's single goroutine can make; server/async
// modes are the teacher's, not this embeddable engine's, concern (spec.md
// §1 Non-goals: no built-in networking server).
func httpEntries() []entry {
	return []entry{
		{"get", hostfn.Native{Name: "Http.get", Arity: 1, Fn: httpGet}},
		{"post", hostfn.Native{Name: "Http.post", Arity: 2, Fn: httpPost}},
	}
}

func httpGet(c hostfn.Caller, args []value.Value) (value.Value, error) {
	url, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return doHTTPRequest(c, "GET", url, "", nil)
}

func httpPost(c hostfn.Caller, args []value.Value) (value.Value, error) {
	url, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	body, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return doHTTPRequest(c, "POST", url, body, strings.NewReader(body))
}

func doHTTPRequest(c hostfn.Caller, method, url, _ string, body io.Reader) (value.Value, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	if resp.StatusCode >= 400 {
		return errVariant(c, newString(c, string(data))), nil
	}
	return ok(c, newString(c, string(data))), nil
}
