package connections

import "fmt"

// RefreshError captures normalized provider refresh failure details.
type RefreshError struct {
	Family      Family
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *RefreshError) Error() string {
	if e == nil {
		return "refresh error"
	}

	scope := "provider refresh"
	if e.Family != "" {
		scope = fmt.Sprintf("%s refresh", e.Family)
	}

	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *RefreshError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefreshError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Family != "" {
		meta["family"] = string(e.Family)
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}

	return meta
}
