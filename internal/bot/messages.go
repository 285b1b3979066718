package bot

import (
	"fmt"
	"sort"
	"strings"
)

// Messages holds every user-facing reply. Defaults come from
// DefaultMessages; individual keys can be overridden with Apply.
type Messages struct {
	Help         string
	EnterMode    string
	ExitMode     string
	ItemAdded    string // fmt verb %s receives the item name
	EmptyList    string
	ListHeader   string
	Cleared      string
	StoreFailure string
}

// DefaultMessages returns the stock Portuguese replies.
func DefaultMessages() Messages {
	return Messages{
		Help: "🛒 Olá! Eu sou o Eugênio.\n\n" +
			"Comandos:\n" +
			"/lista → adicionar produtos\n" +
			"/fim → finalizar lista\n" +
			"/mercado → ver checklist\n" +
			"/limpar → apagar lista",
		EnterMode: "📝 Modo lista ativado.\n" +
			"O que você deseja comprar?\n" +
			"Quando terminar, envie /fim",
		ExitMode:     "✅ Lista salva com sucesso!",
		ItemAdded:    "➕ %s adicionado",
		EmptyList:    "🛒 Sua lista está vazia.",
		ListHeader:   "🛍️ Lista de mercado:",
		Cleared:      "🗑️ Lista apagada, pode criar outra!",
		StoreFailure: "⚠️ Não consegui falar com a lista agora. Tente de novo em instantes.",
	}
}

func (m *Messages) fields() map[string]*string {
	return map[string]*string{
		"help":          &m.Help,
		"enter_mode":    &m.EnterMode,
		"exit_mode":     &m.ExitMode,
		"item_added":    &m.ItemAdded,
		"empty_list":    &m.EmptyList,
		"list_header":   &m.ListHeader,
		"cleared":       &m.Cleared,
		"store_failure": &m.StoreFailure,
	}
}

// Apply overrides messages by snake_case key. Unknown keys and an
// item_added template without exactly one %s are errors.
func (m *Messages) Apply(overrides map[string]string) error {
	fields := m.fields()
	var unknown []string
	for k, v := range overrides {
		dst, ok := fields[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if k == "item_added" {
			if err := checkItemTemplate(v); err != nil {
				return err
			}
		}
		*dst = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown message keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// checkItemTemplate requires exactly one %s and no other verbs that would
// render as %!x(MISSING) or %!(EXTRA ...).
func checkItemTemplate(v string) error {
	if strings.Count(v, "%s") != 1 {
		return fmt.Errorf("messages.item_added must contain exactly one %%s, got %q", v)
	}
	if out := fmt.Sprintf(v, "item"); strings.Contains(out, "%!") {
		return fmt.Errorf("messages.item_added has a bad format verb: %q", v)
	}
	return nil
}
