package session

import (
	"time"

	"cardpricewatcher/logger"
)

// Login page locators. The dashboard heading is the post-login landmark:
// it only renders for authenticated users.
const (
	loginPath         = "/es/Magic/Login"
	usernameField     = `input[name="username"]`
	passwordField     = `input[name="userPassword"]`
	submitButton      = `//input[@type='submit' and @value='Iniciar sesión']`
	dashboardLandmark = `//h2[@class='ps-1 m-0' and text()='Tareas']`
)

// Credentials holds the Cardmarket account credentials
type Credentials struct {
	Username string
	Password string
}

// Login authenticates the session against Cardmarket. It returns true only
// when the post-login landmark appears within the timeout; every failure is
// logged and reported as false. A failed attempt is not retried.
func Login(sess Session, baseURL string, creds Credentials, timeout time.Duration, log *logger.Logger) bool {
	log.Info().Msg("Logging in")

	if err := sess.Navigate(baseURL + loginPath); err != nil {
		log.Warn().Err(err).Msg("Login page navigation failed")
		return false
	}
	if err := sess.WaitVisible(usernameField, timeout); err != nil {
		log.Warn().Err(err).Msg("Login form did not appear")
		return false
	}
	if err := sess.Fill(usernameField, creds.Username); err != nil {
		log.Warn().Err(err).Msg("Could not fill username")
		return false
	}
	if err := sess.Fill(passwordField, creds.Password); err != nil {
		log.Warn().Err(err).Msg("Could not fill password")
		return false
	}
	if err := sess.Click(submitButton); err != nil {
		log.Warn().Err(err).Msg("Could not submit login form")
		return false
	}
	if err := sess.WaitVisible(dashboardLandmark, timeout); err != nil {
		log.Warn().Err(err).Msg("Dashboard landmark did not appear; login rejected or timed out")
		return false
	}

	log.Info().Msg("Login successful")
	return true
}
