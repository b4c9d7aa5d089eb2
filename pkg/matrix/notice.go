package matrix

import "context"

// Level severidad de un aviso.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice aviso breve (toast) para el usuario.
type Notice struct {
	Level   Level
	Message string
}

// Notifier recibe los avisos del editor. Los errores del backend nunca se
// propagan como pánico ni se re-lanzan: terminan aquí.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(Notice)

// Notify implementa Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}

// Source obtiene las filas de la matriz.
type Source interface {
	Fetch(ctx context.Context) ([]RowInput, error)
}

// SourceFunc adapta una función a Source.
type SourceFunc func(ctx context.Context) ([]RowInput, error)

// Fetch implementa Source.
func (f SourceFunc) Fetch(ctx context.Context) ([]RowInput, error) { return f(ctx) }

// ColumnCreated respuesta del backend al crear una columna: su identificador
// y el identificador de la celda creada en cada fila.
type ColumnCreated struct {
	ID    string
	Cells map[string]string // rowKey -> childID
}

// ColumnStore crea y elimina columnas en el backend.
type ColumnStore interface {
	AddColumn(ctx context.Context, name string) (ColumnCreated, error)
	DeleteColumn(ctx context.Context, name string) error
}
