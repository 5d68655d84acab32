// Command preflight serves a page from a second origin that calls the API
// with an Authorization header, which makes the browser send a CORS
// preflight first. Start the API with --cors-trusted-origins=http://localhost:9000.
package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"

	"casting.interimme.net/internal/jsonlog"
)

// page searches movies with a pasted bearer token and shows the raw response.
var page = template.Must(template.New("page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
</head>
<body>
<h1>Preflight CORS</h1>
<input id="token" placeholder="bearer token" size="80">
<input id="term" placeholder="search term">
<button id="search">Search movies</button>
<pre id="output"></pre>
<script>
document.getElementById("search").addEventListener("click", function() {
    fetch({{.API}} + "/movies/search", {
        method: "POST",
        headers: {
            "Authorization": "Bearer " + document.getElementById("token").value,
            "Content-Type": "application/json"
        },
        body: JSON.stringify({search_term: document.getElementById("term").value})
    }).then(
        function(response) {
            response.text().then(function(text) {
                document.getElementById("output").textContent = text;
            });
        },
        function(err) {
            document.getElementById("output").textContent = err;
        }
    );
});
</script>
</body>
</html>`))

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	cmd := &cli.Command{
		Name:  "preflight",
		Usage: "serve a page that exercises CORS preflight against the API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":9000", Usage: "Server address"},
			&cli.StringFlag{Name: "api", Value: "http://localhost:4000", Usage: "Base URL of the API"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addr, api := cmd.String("addr"), cmd.String("api")

			logger.PrintInfo("starting server", map[string]string{"addr": addr, "api": api})

			return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err := page.Execute(w, struct{ API string }{api})
				if err != nil {
					http.Error(w, fmt.Sprintf("render page: %v", err), http.StatusInternalServerError)
				}
			}))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.PrintFatal(err, nil)
	}
}
