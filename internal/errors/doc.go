// Package errors provides structured errors for the party generator.
//
// Errors carry a Code, a user-facing message, an optional cause and
// free-form metadata:
//
//	err := errors.Unavailablef("generator returned status %d", status).
//	    WithMeta("status_code", status)
//
// Wrapping keeps the code of a wrapped *Error:
//
//	if err := repo.Update(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to store page state")
//	}
//
// The web layer turns codes into HTTP statuses with Code.HTTPStatus.
//
// Config and constructor validation uses the builder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("base_url", cfg.BaseURL, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors
