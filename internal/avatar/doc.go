// Package avatar models the sign-language avatar placeholder and resolves
// where it is drawn. No real avatar is rendered.
package avatar
