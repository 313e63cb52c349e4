package audit

import "log"

// Dispatcher grava eventos de auditoria fora de transação, de forma
// assíncrona e best-effort. Usado para eventos que não precisam
// participar de um commit (conflitos, falhas de notificação).

// Sink é quem persiste a entrada; *Logger é a implementação padrão.
type Sink interface {
	Log(e Entry) error
}

type Dispatcher struct {
	sink  Sink
	queue chan Entry
}

func NewDispatcher(sink Sink) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Entry, 100), // buffer seguro
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for e := range d.queue {
		if err := d.sink.Log(e); err != nil {
			log.Println("audit error:", err)
		}
	}
}

func (d *Dispatcher) Dispatch(e Entry) {
	select {
	case d.queue <- e:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		log.Println("audit queue full, dropping event")
	}
}
