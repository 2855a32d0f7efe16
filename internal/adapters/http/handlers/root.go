package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RootGreeting is the plain-text body of GET /.
const RootGreeting = "Hello World"

// Root handles GET / so that a browser or uptime check hitting the bare
// host gets a response.
func Root(c *gin.Context) {
	c.String(http.StatusOK, RootGreeting)
}
