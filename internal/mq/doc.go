// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect и graceful shutdown
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация flight.claimed
//   - consumer.go   — потребление с политикой ack/nack/DLQ
//
// Топология:
//
//	ifs.flights (direct)
//	└── flights.claimed [routing: claimed]   Consumer: ifs-dispatcher, DLQ: dlq.flights
//	ifs.dlq (direct)
//	└── dlq.flights [routing: flights]       ручной разбор
package mq
