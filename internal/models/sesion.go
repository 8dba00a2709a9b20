package models

// Sesion holds everything the bot remembers about a chat: the
// authenticated user (if any) plus the current conversation step and
// its scratch data. Persisted in Redis so a restart keeps people
// logged in.
type Sesion struct {
	ChatID      int64                  `json:"chat_id"`
	Token       string                 `json:"token,omitempty"`
	Usuario     *Usuario               `json:"usuario,omitempty"`
	CurrentStep string                 `json:"current_step,omitempty"`
	TempData    map[string]interface{} `json:"temp_data,omitempty"`
}

// Autenticada reports whether the chat has a logged-in user.
func (s *Sesion) Autenticada() bool {
	return s != nil && s.Token != "" && s.Usuario != nil
}

// Rol returns the role of the logged-in user, or the least privileged
// role when nobody is logged in.
func (s *Sesion) Rol() Rol {
	if s == nil || s.Usuario == nil {
		return RolEstudiante
	}
	return s.Usuario.Rol()
}

func (s *Sesion) GetInt64(key string) int64 {
	if s == nil || s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int64:
		return v
	case float64:
		// JSON roundtrips through Redis decode numbers as float64.
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s *Sesion) GetString(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	if v, ok := s.TempData[key].(string); ok {
		return v
	}
	return ""
}

func (s *Sesion) GetBool(key string) bool {
	if s == nil || s.TempData == nil {
		return false
	}
	if v, ok := s.TempData[key].(bool); ok {
		return v
	}
	return false
}
