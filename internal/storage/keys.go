package storage

import "fmt"

// Keys names the persisted namespaces.
type Keys struct {
	Users        string
	Session      string
	SelectedPlan string
}

func NewKeys(namespace string) Keys {
	if namespace == "" {
		namespace = "fp"
	}
	return Keys{
		Users:        fmt.Sprintf("%s_users_v1", namespace),
		Session:      fmt.Sprintf("%s_session_v1", namespace),
		SelectedPlan: fmt.Sprintf("%s_selected_plan", namespace),
	}
}
