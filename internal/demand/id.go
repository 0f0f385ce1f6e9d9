package demand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gestaozabele/atendimento/internal/util"
)

var idPattern = regexp.MustCompile(`(?i)^([A-Z]{3})(\d{6})/(\d{4})$`)

var prefixOverrides = map[string]string{
	"WHATSAPP": "WST",
	"GESCON":   "GCN",
}

// Prefix deriva o código de três letras do assunto: primeira, do meio e
// última letra, ou o texto completado com "X" quando curto.
func Prefix(subject string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r
		}
		return -1
	}, util.StripAccents(subject))

	if code, ok := prefixOverrides[clean]; ok {
		return code
	}
	if len(clean) >= 3 {
		return string([]byte{clean[0], clean[len(clean)/2], clean[len(clean)-1]})
	}
	return (clean + "XXX")[:3]
}

// SequenceOf extrai o número sequencial de um ID no formato PPPNNNNNN/AAAA.
func SequenceOf(id string) (int, bool) {
	m := idPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextID calcula o próximo identificador para o assunto no ano informado.
// A leitura e a gravação não são atômicas: escritas simultâneas podem gerar
// o mesmo ID.
func NextID(subject string, existing []string, year int) string {
	prefix := Prefix(subject)
	suffix := fmt.Sprintf("/%04d", year)

	max := 0
	for _, raw := range existing {
		id := strings.TrimSpace(raw)
		if !strings.HasPrefix(id, prefix) || !strings.HasSuffix(id, suffix) {
			continue
		}
		if n, ok := SequenceOf(id); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%06d%s", prefix, max+1, suffix)
}
