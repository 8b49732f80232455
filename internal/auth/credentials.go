package auth

import (
	"github.com/gin-gonic/gin"

	appValidator "github.com/podelme/podel/pkg/validator"
)

// Credentials is the login/registration form payload. Authentication carries
// checkbox semantics: the field counts as set when it is present in the form
// at all, whatever its literal value. Set means login, absent means register.
type Credentials struct {
	Authentication bool   `form:"-"`
	Username       string `form:"username" validate:"required,max=64"`
	Password       string `form:"password" validate:"required,max=256"`
	Next           string `form:"next" validate:"max=512"`
}

// ParseCredentials binds and validates the credentials form of a request.
func ParseCredentials(c *gin.Context) (*Credentials, error) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		return nil, err
	}

	if err := appValidator.ValidateStruct(&creds); err != nil {
		return nil, err
	}

	_, creds.Authentication = c.GetPostForm("authentication")

	return &creds, nil
}
