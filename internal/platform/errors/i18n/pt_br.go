package i18n

var ptBRMessages = map[Code]string{
	CodeUnknown:           "Algo deu errado.",
	CodeDuplicateTeacher:  "Um professor já entrou.",
	CodeTeacherNotPresent: "Nenhum professor entrou ainda.",
	CodeInvalidRole:       "Papel desconhecido.",
	CodeUnauthorized:      "Somente o professor pode fazer uma pergunta.",
	CodeInvalidQuestion:   "Pergunta inválida.",
	CodeNoActiveQuestion:  "Nenhuma pergunta ativa.",
	CodeInvalidOption:     "Resposta inválida.",
	CodeInvalidArgument:   "Requisição inválida: {{.reason}}.",
	CodeResourceExhausted: "Muitas requisições.",
}
