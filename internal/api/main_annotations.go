// @title           urlstash API
// @version         1.0
// @description     Personal bookmark manager. Authenticate with an opaque session token.
// @BasePath        /
// @securityDefinitions.apikey SessionToken
// @in              header
// @name            Authorization
// @description     Type "Token" followed by a space and your session token. Example: "Token us_xxx"
package api
