package server

import (
	"encoding/json"
	"regexp"
	"strconv"
	"time"

	"github.com/Shopify/sarama"

	"github.com/janelia-flyem/dvedit/dvid"
)

// KafkaMaxMessageSize is the max message size in bytes for a Kafka message.
const KafkaMaxMessageSize = 980 * dvid.Kilo

var (
	// producer
	kafkaProducer sarama.AsyncProducer

	// the kafka topic for activity logging
	kafkaActivityTopicName string
)

// KafkaConfig describes kafka servers that receive edit activity.
type KafkaConfig struct {
	TopicActivity string // if supplied, will be override topic for activity log
	Servers       []string
	BufferSize    int // number of messages buffered per partition
}

// KafkaActivityTopic returns the topic name used for logging activity for this server.
func KafkaActivityTopic() string {
	return kafkaActivityTopicName
}

// Initialize sets up the activity topic and producer.  Without servers it does nothing.
func (kc KafkaConfig) Initialize(hostID string) error {
	if len(kc.Servers) == 0 {
		return nil
	}
	if kc.TopicActivity != "" {
		kafkaActivityTopicName = kc.TopicActivity
	} else {
		kafkaActivityTopicName = "dveditactivity-" + hostID
	}
	reg, err := regexp.Compile(`[^a-zA-Z0-9\._\-]+`)
	if err != nil {
		return err
	}
	kafkaActivityTopicName = reg.ReplaceAllString(kafkaActivityTopicName, "-")

	config := sarama.NewConfig()
	config.Producer.MaxMessageBytes = KafkaMaxMessageSize
	if kc.BufferSize > 0 {
		config.ChannelBufferSize = kc.BufferSize
	}
	if kafkaProducer, err = sarama.NewAsyncProducer(kc.Servers, config); err != nil {
		return err
	}

	go func() {
		for err := range kafkaProducer.Errors() {
			dvid.Errorf("error on kafka send to topic %q: %v\n", err.Msg.Topic, err.Err)
		}
	}()
	dvid.Infof("Kafka topic for dvedit activity: %s\n", kafkaActivityTopicName)
	return nil
}

// KafkaShutdown makes sure that the kafka queue is flushed before stopping.
func KafkaShutdown() {
	if kafkaProducer == nil {
		return
	}
	if err := kafkaProducer.Close(); err != nil {
		dvid.Errorf("Kafka producer had error on close: %v\n", err)
	} else {
		dvid.Infof("Successfully shut down kafka producer.\n")
	}
	kafkaProducer = nil
}

// LogActivityToKafka publishes activity if a producer is available.
func LogActivityToKafka(activity map[string]interface{}) {
	if kafkaProducer == nil {
		return
	}
	jsonmsg, err := json.Marshal(activity)
	if err != nil {
		dvid.Errorf("unable to marshal activity for kafka logging: %v\n", err)
		return
	}
	timeKey := sarama.StringEncoder(strconv.FormatInt(time.Now().UnixNano(), 10))
	kafkaProducer.Input() <- &sarama.ProducerMessage{
		Topic: kafkaActivityTopicName,
		Key:   timeKey,
		Value: sarama.ByteEncoder(jsonmsg),
	}
}
